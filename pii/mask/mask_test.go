package mask

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"normal", "test@example.com", "te***@example.com"},
		{"two char local", "ab@example.com", "***@example.com"},
		{"one char local", "a@example.com", "***@example.com"},
		{"long local", "verylongemail@domain.com", "ve***@domain.com"},
		{"no at sign", "notanemail", "***"},
		{"empty", "", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Email(tt.input))
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"russian", "+79991234567", "+7***4567"},
		{"without plus", "79991234567", "7***4567"},
		{"short", "123", "***"},
		{"empty", "", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Phone(tt.input))
		})
	}

	t.Run("formatted", func(t *testing.T) {
		result := Phone("+7 (999) 123-45-67")
		require.True(t, strings.HasSuffix(result, "4567"))
		require.Contains(t, result, "***")
	})
}

func TestName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"two words", "Иван Иванов", "Ив*** Ив***"},
		{"single word", "Иван", "Ив***"},
		{"short word", "Ян", "***"},
		{"empty", "", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Name(tt.input))
		})
	}

	t.Run("three words", func(t *testing.T) {
		parts := strings.Split(Name("Иван Иванович Иванов"), " ")
		require.Len(t, parts, 3)
		for _, p := range parts {
			require.Contains(t, p, "***")
		}
	})
}

func TestINN(t *testing.T) {
	require.Equal(t, "77***3893", INN("7707083893"))
	require.Equal(t, "77***5678", INN("772012345678"))
	require.Equal(t, "***", INN("12345"))
	require.Equal(t, "***", INN(""))
}

func TestCard(t *testing.T) {
	require.Equal(t, "**** **** **** 1111", Card("4111111111111111"))
	require.Equal(t, "**** **** **** 1111", Card("4111 1111 1111 1111"))
	require.Equal(t, "***", Card("123"))
	require.Equal(t, "***", Card(""))
}

func TestPassport(t *testing.T) {
	require.Equal(t, "** ** ******", Passport("1234", "567890"))
	require.Equal(t, "** ** ******", Passport("", ""))
}
