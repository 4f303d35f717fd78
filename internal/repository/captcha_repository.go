package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Su57/stardew/internal/models"

	"github.com/redis/go-redis/v9"
)

type CaptchaRepository interface {
	SaveCaptcha(ctx context.Context, id, answer string, ttl time.Duration) error
	// ConsumeCaptcha returns the stored answer and removes it in the same
	// command, so a challenge can be read at most once.
	ConsumeCaptcha(ctx context.Context, id string) (string, error)
}

type captchaRepository struct {
	client *redis.Client
}

func NewCaptchaRepository(client *redis.Client) CaptchaRepository {
	return &captchaRepository{client: client}
}

func (r *captchaRepository) SaveCaptcha(ctx context.Context, id, answer string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.getCaptchaKey(id), answer, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store captcha: %w", err)
	}
	return nil
}

func (r *captchaRepository) ConsumeCaptcha(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", models.ErrCaptchaExpired
	}

	answer, err := r.client.GetDel(ctx, r.getCaptchaKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", models.ErrCaptchaExpired
		}
		return "", fmt.Errorf("failed to consume captcha: %w", err)
	}
	return answer, nil
}

func (r *captchaRepository) getCaptchaKey(id string) string {
	return fmt.Sprintf("captcha_key:%s", id)
}
