package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01712-345 678", "01712345678"},
		{"+880 1712 345678", "+8801712345678"},
		{" (017) 12.34 ", "0171234"},
		{"880+17", "88017"},
		{"", ""},
		{"abc", ""},
		{"+", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "organic-honey-500g", Slugify("  Organic Honey (500g) "))
	assert.Equal(t, "a-b", Slugify("--A__B--"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Tea &amp; Biscuits", Sanitize(" <b>Tea</b> & Biscuits "))
	assert.Equal(t, "alert(1)", Sanitize("<script>alert(1)</script>"))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@x.com"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("Bob <bob@x.com>"))
}

func TestAvatarURL(t *testing.T) {
	assert.Equal(t,
		"https://ui-avatars.com/api/?name=Rahim+Uddin&background=059669&color=fff",
		AvatarURL("Rahim Uddin"))
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Unix(1700000000, 0)
	n, err := NewOrderNumber(now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^HAL-6553F100-[0-9A-F]{6}$`), n)

	other, err := NewOrderNumber(now)
	require.NoError(t, err)
	assert.NotEqual(t, n, other)
}

func TestTemporaryPassword(t *testing.T) {
	p, err := TemporaryPassword()
	require.NoError(t, err)
	assert.Len(t, p, 12)
	assert.Regexp(t, `^[0-9a-f]{12}$`, p)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "secret123"))
	assert.False(t, VerifyPassword(hash, "secret124"))
}

func TestAccessToken(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, "customer", "a@x.com", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, time.Minute)

	claims, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	id, err := claims.PrincipalID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.NotEmpty(t, claims.ID)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := ParseAccessToken("other", tok.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := NewAccessToken("s3cret", 42, "customer", "", -time.Minute)
		require.NoError(t, err)
		_, err = ParseAccessToken("s3cret", old.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseAccessToken("s3cret", "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
