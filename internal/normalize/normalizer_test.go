package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty string passes through",
			input: "",
			want:  "",
		},
		{
			name:  "lowercases and collapses whitespace",
			input: "HDFC Bank   Alert:  Payment    done",
			want:  "hdfc bank alert payment done",
		},
		{
			name:  "expands txn abbreviation",
			input: "Txn of Rs.500 at AMAZON",
			want:  "transaction of rs.500 at amazon",
		},
		{
			name:  "expands account abbreviation with slash",
			input: "debited from A/c XX1234",
			want:  "debited from account xx1234",
		},
		{
			name:  "expands available balance shorthand",
			input: "Avl Bal: Rs.45000",
			want:  "available balance rs.45000",
		},
		{
			name:  "preserves decimal amounts",
			input: "Rs.1,500.75 spent!",
			want:  "rs.1 500.75 spent",
		},
		{
			name:  "strips punctuation noise",
			input: "ALERT!! You've spent Rs.200 @Swiggy",
			want:  "alert you ve spent rs.200 swiggy",
		},
		{
			name:  "does not expand abbreviations inside words",
			input: "deposited balance intact",
			want:  "deposited balance intact",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.input))
		})
	}
}

func TestMessageIdempotent(t *testing.T) {
	raw := "ICICI Bank: Rs.1500 debited from A/c XX1234 for Amazon purchase."
	once := Message(raw)
	assert.Equal(t, once, Message(once))
}
