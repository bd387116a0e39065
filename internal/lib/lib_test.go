package lib

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitList(t *testing.T) {
	r := require.New(t)

	r.Equal([]string{"a", "b", "c"}, SplitList("a, b,,c"))
	r.Equal([]string{"*"}, SplitList("*"))
	r.Empty(SplitList(""))
	r.Empty(SplitList(" , "))
}

func TestPathMatchesOneOfPatterns(t *testing.T) {
	r := require.New(t)

	t.Run("matches doublestar globs", func(t *testing.T) {
		ok, err := PathMatchesOneOfPatterns("dist/assets/app.js", []string{"*.log", "dist/**"})
		r.NoError(err)
		r.True(ok)
	})

	t.Run("skips empty patterns", func(t *testing.T) {
		ok, err := PathMatchesOneOfPatterns("main.go", []string{"", "*.log"})
		r.NoError(err)
		r.False(ok)
	})

	t.Run("rejects malformed patterns", func(t *testing.T) {
		_, err := PathMatchesOneOfPatterns("main.go", []string{"[invalid"})
		r.Error(err)
	})
}

func TestRequestConfirmation(t *testing.T) {
	r := require.New(t)

	cases := []struct {
		answer string
		want   bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"sure\n", false},
		{"", false},
	}

	for _, c := range cases {
		t.Run("answer "+strings.TrimSpace(c.answer), func(t *testing.T) {
			var out strings.Builder
			ok, err := RequestConfirmation(strings.NewReader(c.answer), &out, "Deploy web to acme-prod?")
			r.NoError(err)
			r.Equal(c.want, ok)
			r.Contains(out.String(), "[y/N]")
		})
	}
}

func TestRequestLineInput(t *testing.T) {
	r := require.New(t)

	value, err := RequestLineInput(strings.NewReader("  my-bucket  \n"), io.Discard, "Bucket")
	r.NoError(err)
	r.Equal("my-bucket", value)
}

type mapCredentialsStorage struct {
	values map[string]string
}

func (s *mapCredentialsStorage) Set(key, value string, _ KeyExtras) error {
	s.values[key] = value
	return nil
}

func (s *mapCredentialsStorage) Get(key string) (string, error) {
	return s.values[key], nil
}

func (s *mapCredentialsStorage) Remove(key string) error {
	delete(s.values, key)
	return nil
}

func TestGetSecretFromEnvOrInput(t *testing.T) {
	r := require.New(t)

	t.Run("environment wins and is not persisted", func(t *testing.T) {
		t.Setenv("DEPLOYCTL_TEST_SECRET", "from-env")
		storage := &mapCredentialsStorage{values: map[string]string{}}

		value, err := GetSecretFromEnvOrInput(storage, "test-key", "test secret", []string{"DEPLOYCTL_TEST_SECRET"}, strings.NewReader(""), io.Discard, "Secret")
		r.NoError(err)
		r.Equal("from-env", value)
		r.Empty(storage.values)
	})

	t.Run("storage is consulted before prompting", func(t *testing.T) {
		storage := &mapCredentialsStorage{values: map[string]string{"test-key": "stored"}}

		value, err := GetSecretFromEnvOrInput(storage, "test-key", "test secret", nil, strings.NewReader(""), io.Discard, "Secret")
		r.NoError(err)
		r.Equal("stored", value)
	})

	t.Run("prompted value is persisted", func(t *testing.T) {
		storage := &mapCredentialsStorage{values: map[string]string{}}

		value, err := GetSecretFromEnvOrInput(storage, "test-key", "test secret", nil, strings.NewReader("typed\n"), io.Discard, "Secret")
		r.NoError(err)
		r.Equal("typed", value)
		r.Equal("typed", storage.values["test-key"])
	})
}
