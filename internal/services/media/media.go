// File: internal/services/media/media.go
package media

import (
    "bytes"
    "context"
    "errors"
    "fmt"
    "net/url"
    "strconv"
    "time"

    "github.com/cloudinary/cloudinary-go/v2"
    "github.com/cloudinary/cloudinary-go/v2/api"
    "github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type ResourceType string

const (
    ResourceImage ResourceType = "image"
    // Cloudinary files audio under the video resource type.
    ResourceVideo ResourceType = "video"

    ImageFolder   = "loop-social-platform"
    AudioFolder   = "vision-ai-studio/audio"
    DefaultFolder = ImageFolder
)

var ErrNotConfigured = errors.New("media host is not configured")

// Asset is what a tool keeps after an upload: never the bytes, only where they live.
type Asset struct {
    SecureURL string
    PublicID  string
}

// Signature lets the browser upload directly to the media host.
type Signature struct {
    Signature string `json:"signature"`
    CloudName string `json:"cloudName"`
    Timestamp int64  `json:"timestamp"`
    Folder    string `json:"folder"`
    APIKey    string `json:"apiKey"`
}

type Uploader interface {
    Upload(ctx context.Context, data []byte, folder string, resourceType ResourceType) (*Asset, error)
}

type Signer interface {
    Sign(folder string) (*Signature, error)
}

type Config struct {
    CloudName string
    APIKey    string
    APISecret string
}

func (c *Config) Validate() error {
    if c.CloudName == "" || c.APIKey == "" || c.APISecret == "" {
        return ErrNotConfigured
    }
    return nil
}

// CloudinaryStore implements Uploader and Signer.
type CloudinaryStore struct {
    config Config
    cld    *cloudinary.Cloudinary
    now    func() time.Time
}

// NewCloudinaryStore returns a store even when unconfigured; its methods then fail with ErrNotConfigured.
func NewCloudinaryStore(config Config) (*CloudinaryStore, error) {
    s := &CloudinaryStore{config: config, now: time.Now}
    if config.Validate() != nil {
        return s, nil
    }
    cld, err := cloudinary.NewFromParams(config.CloudName, config.APIKey, config.APISecret)
    if err != nil {
        return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
    }
    s.cld = cld
    return s, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, folder string, resourceType ResourceType) (*Asset, error) {
    if s.cld == nil {
        return nil, ErrNotConfigured
    }
    if len(data) == 0 {
        return nil, errors.New("nothing to upload")
    }

    resp, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
        Folder:       folder,
        ResourceType: string(resourceType),
    })
    if err != nil {
        return nil, fmt.Errorf("upload failed: %w", err)
    }
    if resp.Error.Message != "" {
        return nil, fmt.Errorf("upload failed: %s", resp.Error.Message)
    }
    if resp.SecureURL == "" {
        return nil, errors.New("Upload returned no result")
    }
    return &Asset{SecureURL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

// Sign signs {folder, timestamp} with the API secret.
func (s *CloudinaryStore) Sign(folder string) (*Signature, error) {
    if err := s.config.Validate(); err != nil {
        return nil, err
    }
    if folder == "" {
        folder = DefaultFolder
    }

    ts := s.now().Unix()
    params := url.Values{}
    params.Set("folder", folder)
    params.Set("timestamp", strconv.FormatInt(ts, 10))

    sig, err := api.SignParameters(params, s.config.APISecret)
    if err != nil {
        return nil, fmt.Errorf("failed to sign upload parameters: %w", err)
    }
    return &Signature{
        Signature: sig,
        CloudName: s.config.CloudName,
        Timestamp: ts,
        Folder:    folder,
        APIKey:    s.config.APIKey,
    }, nil
}
