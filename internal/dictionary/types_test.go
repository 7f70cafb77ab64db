package dictionary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://www.pealim.com/ru/dict/17", PageURL("https://www.pealim.com", LocaleRU, 17))
	require.Equal(t, "https://www.pealim.com/he/dict/1", PageURL("https://www.pealim.com", LocaleHE, 1))
}

func TestEntryFieldsDispatch(t *testing.T) {
	t.Parallel()

	e := &Entry{Index: 3}
	e.Fields(LocaleEN).Translation = "to write"

	require.Equal(t, "to write", e.EN.Translation)
	require.Empty(t, e.RU.Translation)
	require.Nil(t, e.Fields(Locale("fr")))
}

func TestLocalesOrder(t *testing.T) {
	t.Parallel()

	require.Equal(t, []Locale{LocaleRU, LocaleEN, LocaleHE}, Locales())
}
