package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-service/internal/match/model"
)

func TestBuildReferenceFirstWins(t *testing.T) {
	ref, err := BuildReference([]model.ReferenceEntry{
		{Name: "a", Code: "X"},
		{Name: "a", Code: "Y"},
	})
	require.NoError(t, err)

	code, ok := ref.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "X", code)
	assert.Equal(t, 2, ref.Len())
	assert.Equal(t, []string{"a"}, ref.Candidates())
}

func TestBuildReferenceNormalizesAndKeepsOrder(t *testing.T) {
	ref, err := BuildReference([]model.ReferenceEntry{
		{Name: "  Pepsi 12oz Can ", Code: "UPC2"},
		{Name: "Coca Cola 12oz Can", Code: "UPC1"},
		{Name: "PEPSI 12OZ CAN", Code: "UPC3"},
		{Name: "", Code: "UPC4"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"pepsi 12oz can", "coca cola 12oz can", ""}, ref.Candidates())
	assert.Equal(t, []model.ReferenceEntry{
		{Name: "pepsi 12oz can", Code: "UPC2"},
		{Name: "coca cola 12oz can", Code: "UPC1"},
		{Name: "pepsi 12oz can", Code: "UPC3"},
		{Name: "", Code: "UPC4"},
	}, ref.Entries())

	code, ok := ref.Lookup("pepsi 12oz can")
	require.True(t, ok)
	assert.Equal(t, "UPC2", code)

	_, ok = ref.Lookup("Pepsi 12oz Can")
	assert.False(t, ok, "lookup keys are normalized names")
}

func TestBuildReferenceEmpty(t *testing.T) {
	ref, err := BuildReference(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ref.Len())
	assert.Empty(t, ref.Candidates())
}

func TestBuildReferenceRejectsMalformedEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []model.ReferenceEntry
		field   string
	}{
		{"empty code", []model.ReferenceEntry{{Name: "a", Code: "1"}, {Name: "b", Code: ""}}, "reference[1].code"},
		{"blank code", []model.ReferenceEntry{{Name: "a", Code: "  "}}, "reference[0].code"},
		{"invalid utf8 name", []model.ReferenceEntry{{Name: "a\xffb", Code: "1"}}, "reference[0].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := BuildReference(tt.entries)
			assert.Nil(t, ref)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig))
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestNilReferenceSet(t *testing.T) {
	var ref *ReferenceSet
	assert.Equal(t, 0, ref.Len())
	assert.Nil(t, ref.Candidates())
	assert.Nil(t, ref.Entries())
	_, ok := ref.Lookup("a")
	assert.False(t, ok)
}
