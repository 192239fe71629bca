package media

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestSignDefaultsFolderAndIsDeterministic(t *testing.T) {
    s, err := NewCloudinaryStore(Config{CloudName: "demo", APIKey: "key", APISecret: "secret"})
    require.NoError(t, err)
    s.now = func() time.Time { return time.Unix(1700000000, 0) }

    a, err := s.Sign("")
    require.NoError(t, err)
    assert.Equal(t, DefaultFolder, a.Folder)
    assert.Equal(t, int64(1700000000), a.Timestamp)
    assert.Equal(t, "demo", a.CloudName)
    assert.Equal(t, "key", a.APIKey)
    assert.NotEmpty(t, a.Signature)

    b, err := s.Sign(DefaultFolder)
    require.NoError(t, err)
    assert.Equal(t, a.Signature, b.Signature)

    c, err := s.Sign("other")
    require.NoError(t, err)
    assert.NotEqual(t, a.Signature, c.Signature)
}

func TestUnconfiguredStore(t *testing.T) {
    s, err := NewCloudinaryStore(Config{})
    require.NoError(t, err)

    _, err = s.Upload(context.Background(), []byte("x"), ImageFolder, ResourceImage)
    assert.ErrorIs(t, err, ErrNotConfigured)

    _, err = s.Sign("")
    assert.ErrorIs(t, err, ErrNotConfigured)
}
