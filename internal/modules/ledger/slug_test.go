package ledger

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Budi Santoso":     "budi-santoso",
		"  Ibu   Siti  ":   "ibu-siti",
		"Toko / Cabang #2": "toko-cabang-2",
		"---x---":          "x",
		"Émile":            "emile",
		"José Núñez":       "jose-nunez",
		"- -":              "",
		"snake_case Name":  "snake_case-name",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNewFilename(t *testing.T) {
	at := time.Unix(1714550400, 123456789)

	name := NewFilename("Budi Santoso", at)
	assert.Equal(t, "budi-santoso-1714550400123456789", name)
	assert.Regexp(t, regexp.MustCompile(`^budi-santoso-\d+$`), name)
	assert.True(t, ValidFilename(name))

	assert.Equal(t, "invoice-1714550400123456789", NewFilename("- -", at))
}

func TestValidFilename(t *testing.T) {
	assert.True(t, ValidFilename("invoice_user_1_abc"))
	for _, bad := range []string{"", "../x", "a/b", ".hidden", "a.json", "-x"} {
		assert.False(t, ValidFilename(bad), bad)
	}
}
