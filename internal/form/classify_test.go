package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDescriptive(t *testing.T) {
	minLenSmall, minLenLarge := 20, 100

	testCases := []struct {
		name string
		desc FieldDescriptor
		want bool
	}{
		{"long text kind", FieldDescriptor{Label: "Comments", Kind: KindLongText}, true},
		{"challenge keyword", field("Tell us about a challenge you overcame", KindShortText), true},
		{"why keyword", field("Why this company?", KindShortText), true},
		{"phone number", field("Phone number", KindTel), false},
		{"plain numeric", field("Number of dependents", KindNumber), false},
		{"large minlength", FieldDescriptor{
			Label: "Summary", Kind: KindShortText,
			Constraints: Constraints{MinLength: &minLenLarge},
		}, true},
		{"small minlength", FieldDescriptor{
			Label: "Summary", Kind: KindShortText,
			Constraints: Constraints{MinLength: &minLenSmall},
		}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDescriptive(tc.desc))
		})
	}
}
