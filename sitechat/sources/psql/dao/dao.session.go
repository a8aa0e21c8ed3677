// sitechat/sources/psql/dao/dao.session.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sitechat/sitechat/sessions"
	"sitechat/sitechat/sources/psql/models"

	"gorm.io/gorm"
)

// SessionDAO is the postgres-backed sessions.Store.
type SessionDAO struct {
	DB *gorm.DB
}

func NewSessionDAO(db *gorm.DB) *SessionDAO {
	return &SessionDAO{DB: db}
}

func (dao *SessionDAO) Get(ctx context.Context, id string) (*sessions.Session, error) {
	var ws models.WebSession
	err := dao.DB.WithContext(ctx).Where("id = ?", id).First(&ws).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	turns, err := dao.listTurns(ctx, id)
	if err != nil {
		return nil, err
	}
	return &sessions.Session{
		ID:             ws.ID,
		WebsiteURL:     ws.WebsiteURL,
		WebsiteTitle:   ws.WebsiteTitle,
		WebsiteContent: ws.WebsiteContent,
		FetchFailed:    ws.FetchFailed,
		APIKey:         ws.APIKey,
		APIProvider:    ws.APIProvider,
		ChatHistory:    turns,
		CreatedAt:      ws.CreatedAt,
		UpdatedAt:      ws.UpdatedAt,
	}, nil
}

// Put creates or overwrites the setup fields of a session and drops its turns.
func (dao *SessionDAO) Put(ctx context.Context, s *sessions.Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ws models.WebSession
		err := tx.Where("id = ?", s.ID).First(&ws).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		exists := err == nil

		ws.ID = s.ID
		ws.WebsiteURL = s.WebsiteURL
		ws.WebsiteTitle = s.WebsiteTitle
		ws.WebsiteContent = s.WebsiteContent
		ws.FetchFailed = s.FetchFailed
		ws.APIKey = s.APIKey
		ws.APIProvider = s.APIProvider

		if !exists {
			return tx.Create(&ws).Error
		}
		if err := tx.Save(&ws).Error; err != nil {
			return err
		}
		return tx.Where("session_id = ?", s.ID).Delete(&models.ChatTurn{}).Error
	})
}

func (dao *SessionDAO) AppendTurns(ctx context.Context, id string, turns ...sessions.Turn) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.WebSession{}).Where("id = ?", id).Update("updated_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("session %s not found", id)
		}
		if len(turns) == 0 {
			return nil
		}
		rows := make([]models.ChatTurn, 0, len(turns))
		for _, t := range turns {
			rows = append(rows, models.ChatTurn{SessionID: id, Role: string(t.Role), Content: t.Content})
		}
		return tx.Create(&rows).Error
	})
}

func (dao *SessionDAO) Ping(ctx context.Context) error {
	sqlDB, err := dao.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (dao *SessionDAO) listTurns(ctx context.Context, id string) ([]sessions.Turn, error) {
	var rows []models.ChatTurn
	err := dao.DB.WithContext(ctx).
		Where("session_id = ?", id).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	turns := make([]sessions.Turn, 0, len(rows))
	for _, r := range rows {
		turns = append(turns, sessions.Turn{Role: sessions.Role(r.Role), Content: r.Content})
	}
	return turns, nil
}
