package seed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	adminkeydomain "github.com/appoetlabs/appoet/internal/adminkey/domain"
	sampledomain "github.com/appoetlabs/appoet/internal/sample/domain"
	tierdomain "github.com/appoetlabs/appoet/internal/tier/domain"
)

const bootstrapKeyName = "bootstrap"

// EnsureDefaults seeds the launch tiers, the public sample poems and a
// bootstrap admin key inside one transaction. Safe to run repeatedly; rows
// that already exist are left alone. The returned string is the plaintext
// bootstrap key, empty when one was already issued.
func EnsureDefaults(db *gorm.DB) (string, error) {
	if db == nil {
		return "", errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return "", err
	}

	var bootstrapKey string
	ctx := context.Background()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTiers(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureSamplePoems(ctx, tx, node); err != nil {
			return err
		}
		key, err := ensureBootstrapKey(ctx, tx, node)
		if err != nil {
			return err
		}
		bootstrapKey = key
		return nil
	})
	if err != nil {
		return "", err
	}
	return bootstrapKey, nil
}

func ensureTiers(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	now := time.Now().UTC()
	tiers := []tierdomain.Tier{
		{
			Name:          "Quick Poem",
			Description:   "Perfect for quick gifts, social media, and greeting cards",
			PoemCount:     2,
			BonusPoems:    1,
			PriceCents:    99,
			Currency:      "USD",
			DeliveryHours: 24,
			Active:        true,
		},
		{
			Name:          "Custom Poem",
			Description:   "Fully customized poetry for special occasions and meaningful gifts",
			PoemCount:     2,
			BonusPoems:    1,
			PriceCents:    199,
			Currency:      "USD",
			DeliveryHours: 48,
			Active:        true,
		},
	}

	for _, tier := range tiers {
		tier.Code = slug.Make(tier.Name)

		var count int64
		if err := tx.WithContext(ctx).
			Model(&tierdomain.Tier{}).
			Where("code = ?", tier.Code).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		tier.ID = node.Generate()
		tier.CreatedAt = now
		tier.UpdatedAt = now
		if err := tx.WithContext(ctx).Create(&tier).Error; err != nil {
			return fmt.Errorf("seed tier %s: %w", tier.Code, err)
		}
	}
	return nil
}

func ensureSamplePoems(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&sampledomain.SamplePoem{}).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	samples := []sampledomain.SamplePoem{
		{
			Title: "Morning Light",
			Content: "Golden threads unfold\n" +
				"Across the quiet canvas\n" +
				"Day begins to breathe.",
			PoemType:     "HAIKU",
			Visible:      true,
			DisplayOrder: 1,
		},
		{
			Title: "For What Remains",
			Content: "We kept the small things:\n" +
				"A button, smooth from your thumb,\n" +
				"The recipe card stained with oil and time,\n" +
				"Your laugh caught in the pause\n" +
				"Between the tick and tock.\n\n" +
				"Loss is not the absence\n" +
				"But the learning how to hold\n" +
				"What can't be held,\n" +
				"The shape of you in every empty chair,\n" +
				"The echo of your name\n" +
				"In rooms that know you're gone.",
			PoemType:     "FREE_VERSE",
			Visible:      true,
			DisplayOrder: 2,
		},
		{
			Title: "First Steps",
			Content: "Tiny toes on wooden floor,\n" +
				"Wobble, fall, then try once more,\n" +
				"Balance found in baby's eyes,\n" +
				"Watch them bloom before they fly.",
			PoemType:     "LIMERICK",
			Visible:      true,
			DisplayOrder: 3,
		},
	}

	for _, sample := range samples {
		sample.ID = node.Generate()
		sample.CreatedAt = now
		if err := tx.WithContext(ctx).Create(&sample).Error; err != nil {
			return fmt.Errorf("seed sample poem %q: %w", sample.Title, err)
		}
	}
	return nil
}

// ensureBootstrapKey issues the first admin key with every scope. The
// plaintext is printed by the seed command and never stored.
func ensureBootstrapKey(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (string, error) {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&adminkeydomain.AdminKey{}).
		Where("name = ?", bootstrapKeyName).
		Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	plaintext := "apk_" + hex.EncodeToString(raw)

	now := time.Now().UTC()
	key := adminkeydomain.AdminKey{
		ID:        node.Generate(),
		Name:      bootstrapKeyName,
		KeyHash:   adminkeydomain.HashKey(plaintext),
		Scopes:    append([]string(nil), adminkeydomain.KnownScopes...),
		ExpiresAt: now.Add(adminkeydomain.DefaultTTL),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&key).Error; err != nil {
		return "", fmt.Errorf("seed bootstrap admin key: %w", err)
	}
	return plaintext, nil
}
