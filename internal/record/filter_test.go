package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches_NilFilterMatchesEverything(t *testing.T) {
	assert.True(t, Matches(nil, Row{}))
	assert.True(t, Matches(nil, Row{"Code": "1"}))
}

func TestMatches_Equals(t *testing.T) {
	row := Row{"State": "ONSL", "Owner": "3"}

	assert.True(t, Matches(Equals{Field: "State", Value: "ONSL"}, row))
	assert.False(t, Matches(Equals{Field: "State", Value: "SOLD"}, row))

	// An absent column never equals anything, not even the empty string.
	assert.False(t, Matches(Equals{Field: "Buyer", Value: ""}, row))
}

func TestMatches_In(t *testing.T) {
	row := Row{"State": "NSOL"}

	assert.True(t, Matches(In{Field: "State", Values: []string{"SHOW", "NSOL"}}, row))
	assert.False(t, Matches(In{Field: "State", Values: []string{"SHOW", "SOLD"}}, row))
	assert.False(t, Matches(In{Field: "State", Values: nil}, row))
	assert.False(t, Matches(In{Field: "Buyer", Values: []string{""}}, row))
}

func TestMatches_Null(t *testing.T) {
	row := Row{"Owner": "3"}

	assert.True(t, Matches(IsNull{Field: "Buyer"}, row))
	assert.False(t, Matches(IsNull{Field: "Owner"}, row))
	assert.True(t, Matches(NotNull{Field: "Owner"}, row))
	assert.False(t, Matches(NotNull{Field: "Buyer"}, row))
}

func TestMatches_And(t *testing.T) {
	row := Row{"Owner": "3", "State": "SOLD"}

	assert.True(t, Matches(And{Filters: []Filter{
		Equals{Field: "Owner", Value: "3"},
		Equals{Field: "State", Value: "SOLD"},
	}}, row))
	assert.False(t, Matches(And{Filters: []Filter{
		Equals{Field: "Owner", Value: "3"},
		Equals{Field: "State", Value: "DLVR"},
	}}, row))

	// Empty conjunction matches everything.
	assert.True(t, Matches(And{}, row))

	// Nested nil member matches everything.
	assert.True(t, Matches(And{Filters: []Filter{nil}}, row))
}

func TestFilterString(t *testing.T) {
	f := And{Filters: []Filter{
		Equals{Field: "Owner", Value: "3"},
		In{Field: "State", Values: []string{"SHOW", "NSOL"}},
		IsNull{Field: "Buyer"},
	}}

	s := FilterString(f)
	assert.Contains(t, s, "Owner")
	assert.Contains(t, s, "State")
	assert.Contains(t, s, "Buyer")

	assert.Equal(t, "<any>", FilterString(nil))
}
