package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lubritrack/label-engine/pkg/labelformat"
)

// configurationRecord is the gorm row backing a shop's configuration.
type configurationRecord struct {
	ShopID          string `gorm:"primaryKey;column:shop_id"`
	HeaderText      string `gorm:"column:header_text"`
	FooterText      string `gorm:"column:footer_text"`
	PaperSize       string `gorm:"column:paper_size"`
	QRSize          int    `gorm:"column:qr_size"`
	FontSize        int    `gorm:"column:font_size"`
	MarginTop       int    `gorm:"column:margin_top"`
	MarginBottom    int    `gorm:"column:margin_bottom"`
	MarginLeft      int    `gorm:"column:margin_left"`
	MarginRight     int    `gorm:"column:margin_right"`
	BackgroundColor string `gorm:"column:background_color"`
	TextColor       string `gorm:"column:text_color"`
	BorderColor     string `gorm:"column:border_color"`
	IncludeDate     bool   `gorm:"column:include_date"`
	IncludeShopName bool   `gorm:"column:include_shop_name"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (configurationRecord) TableName() string { return "label_configurations" }

// GormStore persists configurations in a sqlite database.
type GormStore struct {
	db *gorm.DB
}

// Open opens (creating if needed) the configuration database.
func Open(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration database: %w", err)
	}

	if err := db.AutoMigrate(&configurationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate configuration schema: %w", err)
	}

	return &GormStore{db: db}, nil
}

// Load returns the stored configuration for a shop, or ErrNotFound.
func (s *GormStore) Load(ctx context.Context, shopID string) (labelformat.Configuration, error) {
	var rec configurationRecord
	err := s.db.WithContext(ctx).First(&rec, "shop_id = ?", shopID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return labelformat.Configuration{}, ErrNotFound
	}
	if err != nil {
		return labelformat.Configuration{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	return toConfiguration(rec), nil
}

// Save merges the patch into the shop's record, creating it from the
// defaults on first save. No optimistic-concurrency check: last writer
// wins. Callers re-read for the canonical state.
func (s *GormStore) Save(ctx context.Context, shopID string, patch labelformat.ConfigurationPatch) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec configurationRecord
		err := tx.First(&rec, "shop_id = ?", shopID).Error

		var current labelformat.Configuration
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			current = labelformat.DefaultConfiguration(shopID)
		case err != nil:
			return fmt.Errorf("failed to read configuration: %w", err)
		default:
			current = toConfiguration(rec)
		}

		merged := patch.Apply(current)
		row := toRecord(merged)
		row.CreatedAt = current.CreatedAt

		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
		return nil
	})
}

// Reset overwrites the shop's record with the hard-coded defaults.
func (s *GormStore) Reset(ctx context.Context, shopID string) error {
	defaults := toRecord(labelformat.DefaultConfiguration(shopID))

	var existing configurationRecord
	err := s.db.WithContext(ctx).First(&existing, "shop_id = ?", shopID).Error
	if err == nil {
		defaults.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := s.db.WithContext(ctx).Save(&defaults).Error; err != nil {
		return fmt.Errorf("failed to reset configuration: %w", err)
	}
	return nil
}

func toConfiguration(r configurationRecord) labelformat.Configuration {
	return labelformat.Configuration{
		ShopID:     r.ShopID,
		HeaderText: r.HeaderText,
		FooterText: r.FooterText,
		PaperSize:  labelformat.PaperSize(r.PaperSize),
		QRSize:     r.QRSize,
		FontSize:   r.FontSize,
		Margins: labelformat.MarginBox{
			Top:    r.MarginTop,
			Bottom: r.MarginBottom,
			Left:   r.MarginLeft,
			Right:  r.MarginRight,
		},
		Colors: labelformat.ColorSet{
			Background: r.BackgroundColor,
			Text:       r.TextColor,
			Border:     r.BorderColor,
		},
		IncludeDate:     r.IncludeDate,
		IncludeShopName: r.IncludeShopName,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toRecord(c labelformat.Configuration) configurationRecord {
	return configurationRecord{
		ShopID:          c.ShopID,
		HeaderText:      c.HeaderText,
		FooterText:      c.FooterText,
		PaperSize:       string(c.PaperSize),
		QRSize:          c.QRSize,
		FontSize:        c.FontSize,
		MarginTop:       c.Margins.Top,
		MarginBottom:    c.Margins.Bottom,
		MarginLeft:      c.Margins.Left,
		MarginRight:     c.Margins.Right,
		BackgroundColor: c.Colors.Background,
		TextColor:       c.Colors.Text,
		BorderColor:     c.Colors.Border,
		IncludeDate:     c.IncludeDate,
		IncludeShopName: c.IncludeShopName,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
