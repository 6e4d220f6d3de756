package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryEqual(t *testing.T) {
	q := Field("subtype").Equal("defect")
	assert.Equal(t, `"subtype EQ ^defect^"`, q.String())
}

func TestQueryInComparison(t *testing.T) {
	q := Field("id").InComparison([]string{"1", "2", "3"})
	assert.Equal(t, `"id IN ^1^,^2^,^3^"`, q.String())
}

func TestQueryAnd(t *testing.T) {
	q := Field("subtype").Equal("defect").And(Field("id").InComparison([]string{"1", "2"}))
	assert.Equal(t, `"subtype EQ ^defect^;id IN ^1^,^2^"`, q.String())
}

func TestQueryAndEmptySides(t *testing.T) {
	q := Query{}.And(Field("id").Equal("5"))
	assert.Equal(t, `"id EQ ^5^"`, q.String())

	q = Field("id").Equal("5").And(Query{})
	assert.Equal(t, `"id EQ ^5^"`, q.String())

	assert.True(t, Query{}.Empty())
	assert.Equal(t, "", Query{}.String())
}
