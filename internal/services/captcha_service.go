package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/big"
	mrand "math/rand/v2"
	"strings"
	"time"

	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	captchaLetters = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	captchaPadding = 3
	captchaScale   = 4
	captchaNoise   = 120
)

type CaptchaService struct {
	captchaRepo repository.CaptchaRepository
	length      int
	ttl         time.Duration
}

func NewCaptchaService(captchaRepo repository.CaptchaRepository, length int, ttl time.Duration) *CaptchaService {
	return &CaptchaService{
		captchaRepo: captchaRepo,
		length:      length,
		ttl:         ttl,
	}
}

// CreateCaptcha stores a fresh answer and returns the challenge id together
// with the rendered answer as a base64 PNG. The answer itself never leaves
// the store.
func (s *CaptchaService) CreateCaptcha(ctx context.Context) (*models.CaptchaInfo, error) {
	answer, err := generateCaptchaAnswer(s.length)
	if err != nil {
		return nil, err
	}

	img, err := renderCaptcha(answer)
	if err != nil {
		return nil, fmt.Errorf("failed to render captcha: %w", err)
	}

	uid := uuid.New().String()
	if err := s.captchaRepo.SaveCaptcha(ctx, uid, answer, s.ttl); err != nil {
		return nil, err
	}

	return &models.CaptchaInfo{
		UID:   uid,
		Image: base64.StdEncoding.EncodeToString(img),
	}, nil
}

// VerifyCaptcha consumes the challenge on the first attempt whatever the
// outcome; a second attempt with the same uid always fails.
func (s *CaptchaService) VerifyCaptcha(ctx context.Context, uid, code string) error {
	answer, err := s.captchaRepo.ConsumeCaptcha(ctx, uid)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, strings.TrimSpace(code)) {
		return models.ErrCaptchaMismatch
	}
	return nil
}

func generateCaptchaAnswer(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("captcha length must be positive")
	}

	limit := big.NewInt(int64(len(captchaLetters)))
	answer := make([]byte, length)
	for i := range answer {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate captcha: %w", err)
		}
		answer[i] = captchaLetters[n.Int64()]
	}
	return string(answer), nil
}

// renderCaptcha draws the answer with the 7x13 bitmap face, upscales it and
// sprinkles noise over the result.
func renderCaptcha(answer string) ([]byte, error) {
	face := basicfont.Face7x13
	small := image.NewRGBA(image.Rect(0, 0, face.Advance*len(answer)+2*captchaPadding, face.Height+2*captchaPadding))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)

	for i, ch := range answer {
		d := &font.Drawer{
			Dst:  small,
			Src:  image.NewUniform(randomInk()),
			Face: face,
			Dot:  fixed.P(captchaPadding+i*face.Advance, captchaPadding+face.Ascent+mrand.IntN(3)-1),
		}
		d.DrawString(string(ch))
	}

	bounds := small.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*captchaScale, bounds.Dy()*captchaScale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), small, bounds, draw.Src, nil)

	for range captchaNoise {
		x := mrand.IntN(dst.Bounds().Dx())
		y := mrand.IntN(dst.Bounds().Dy())
		dst.Set(x, y, randomInk())
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func randomInk() color.RGBA {
	return color.RGBA{
		R: uint8(mrand.IntN(160)),
		G: uint8(mrand.IntN(160)),
		B: uint8(mrand.IntN(160)),
		A: 0xff,
	}
}
