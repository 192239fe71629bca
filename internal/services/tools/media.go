// File: internal/services/tools/media.go
package tools

import (
    "context"
    "errors"

    "github.com/iyunix/go-visionai/internal/services/media"
    "github.com/iyunix/go-visionai/internal/services/providers"
)

const (
    GenerateImageName = "generateImage"
    TextToSpeechName  = "textToSpeech"

    defaultImageSize = 1024
)

type ImageGenerator interface {
    GenerateImage(ctx context.Context, r providers.ImageRequest) ([]byte, error)
}

type SpeechSynthesizer interface {
    Speak(ctx context.Context, text string) ([]byte, error)
}

type imageInput struct {
    Prompt         string `json:"prompt" validate:"required"`
    Width          *int   `json:"width" validate:"required,min=256,max=2048"`
    Height         *int   `json:"height" validate:"required,min=256,max=2048"`
    NegativePrompt string `json:"negative_prompt"`
}

type ImageOutput struct {
    Success  bool   `json:"success"`
    Image    string `json:"image"`
    PublicID string `json:"publicId"`
    Prompt   string `json:"prompt"`
    Width    int    `json:"width"`
    Height   int    `json:"height"`
    Model    string `json:"model"`
}

// hardOrSoft turns a missing key or an unconfigured media host into a
// ConfigError and anything else into a soft failure.
func hardOrSoft(tool string, err error, failure *Failure) (interface{}, error) {
    if providers.IsConfigError(err) || errors.Is(err, media.ErrNotConfigured) {
        return nil, &ConfigError{Tool: tool, Message: providers.Reason(err), Cause: err}
    }
    failure.Error = providers.Reason(err)
    return failure, nil
}

func NewGenerateImageTool(gen ImageGenerator, up media.Uploader) Tool {
    return &typedTool[imageInput]{
        name: GenerateImageName,
        description: "Generate high-quality images using AI. Use this when the user explicitly asks to create, generate, or make an image, " +
            "picture, photo, illustration, or artwork. The model used is Flux Schnell, which creates fast, high-quality images based on text prompts.",
        parameters: map[string]interface{}{
            "type": "object",
            "properties": map[string]interface{}{
                "prompt": map[string]interface{}{
                    "type": "string",
                    "description": "Detailed description of the image to generate. Be specific about style, composition, colors, " +
                        "subject, mood, and any other relevant details.",
                },
                "width": map[string]interface{}{
                    "type": "integer", "minimum": 256, "maximum": 2048, "default": defaultImageSize,
                    "description": "Width of the image in pixels",
                },
                "height": map[string]interface{}{
                    "type": "integer", "minimum": 256, "maximum": 2048, "default": defaultImageSize,
                    "description": "Height of the image in pixels",
                },
                "negative_prompt": map[string]interface{}{
                    "type":        "string",
                    "description": "Things to avoid in the image",
                },
            },
            "required": []string{"prompt"},
        },
        defaults: func(in *imageInput) {
            if in.Width == nil {
                w := defaultImageSize
                in.Width = &w
            }
            if in.Height == nil {
                h := defaultImageSize
                in.Height = &h
            }
        },
        run: func(ctx context.Context, in imageInput) (interface{}, error) {
            img, err := gen.GenerateImage(ctx, providers.ImageRequest{
                Prompt:         in.Prompt,
                Width:          *in.Width,
                Height:         *in.Height,
                NegativePrompt: in.NegativePrompt,
            })
            if err != nil {
                return hardOrSoft(GenerateImageName, err, &Failure{Prompt: in.Prompt})
            }

            asset, err := up.Upload(ctx, img, media.ImageFolder, media.ResourceImage)
            if err != nil {
                return hardOrSoft(GenerateImageName, err, &Failure{Prompt: in.Prompt})
            }

            return &ImageOutput{
                Success:  true,
                Image:    asset.SecureURL,
                PublicID: asset.PublicID,
                Prompt:   in.Prompt,
                Width:    *in.Width,
                Height:   *in.Height,
                Model:    providers.ImageModel,
            }, nil
        },
    }
}

type speechInput struct {
    Text string `json:"text" validate:"required"`
}

type SpeechOutput struct {
    Success  bool   `json:"success"`
    AudioURL string `json:"audioUrl"`
    PublicID string `json:"publicId"`
    Text     string `json:"text"`
}

func NewTextToSpeechTool(tts SpeechSynthesizer, up media.Uploader) Tool {
    return &typedTool[speechInput]{
        name: TextToSpeechName,
        description: "Convert text to speech using an AI model. Use this when the user asks to 'say', 'speak', " +
            "'read out loud', or convert text to audio.",
        parameters: map[string]interface{}{
            "type": "object",
            "properties": map[string]interface{}{
                "text": map[string]interface{}{
                    "type":        "string",
                    "description": "The text to convert to speech",
                },
            },
            "required": []string{"text"},
        },
        run: func(ctx context.Context, in speechInput) (interface{}, error) {
            audio, err := tts.Speak(ctx, in.Text)
            if err != nil {
                return hardOrSoft(TextToSpeechName, err, &Failure{Text: in.Text})
            }

            asset, err := up.Upload(ctx, audio, media.AudioFolder, media.ResourceVideo)
            if err != nil {
                return hardOrSoft(TextToSpeechName, err, &Failure{Text: in.Text})
            }

            return &SpeechOutput{
                Success:  true,
                AudioURL: asset.SecureURL,
                PublicID: asset.PublicID,
                Text:     in.Text,
            }, nil
        },
    }
}
