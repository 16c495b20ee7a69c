package flows

import (
	"context"
	"errors"
	"strings"

	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/pkg/audio"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
)

// ErrNoMedia is returned when the speech model replies without audio
var ErrNoMedia = errors.New("No media returned from TTS model.")

// AudioOutput is a playable audio overview
type AudioOutput struct {
	AudioDataURI string
}

// SynthesizeAudio renders text as speech and returns a WAV data URI
func (f *Flows) SynthesizeAudio(ctx context.Context, text string) (*AudioOutput, error) {
	if strings.TrimSpace(text) == "" {
		return nil, pkgerrors.NewValidationError(FlowAudio + ": text is required")
	}

	resp, err := f.client.Generate(ctx, ports.GenerateRequest{
		Flow:     FlowAudio,
		Model:    f.cfg.SpeechModel,
		Parts:    []ports.Part{ports.TextPart(text)},
		Modality: ports.ModalityAudio,
		Voice:    f.cfg.Voice,
	})
	if err != nil {
		return nil, err
	}
	if !resp.HasMedia() {
		return nil, pkgerrors.NewExternalError("speech model", ErrNoMedia)
	}

	wav, err := audio.EncodeWAV(resp.Media, audio.SpeechFormat)
	if err != nil {
		return nil, pkgerrors.NewExternalError("speech model", err)
	}
	return &AudioOutput{AudioDataURI: EncodeDataURI("audio/wav", wav)}, nil
}
