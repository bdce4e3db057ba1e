package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtend(t *testing.T) {
	assert.True(t, Extend(NewMoneyFromInt(2000), 3).Equal(NewMoneyFromInt(6000)))
	assert.True(t, Extend(MustMoney("1500.50"), 2).Equal(MustMoney("3001")))
	assert.True(t, Extend(NewMoneyFromInt(1000), 0).IsZero())
}
