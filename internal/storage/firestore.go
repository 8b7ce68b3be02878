// Package storage persists per-guild settings and channel relay links.
package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bgrierson/lead-filter-bot/internal/models"
)

const (
	settingsCollection = "guildSettings"
	linksCollection    = "channelLinks"
)

// FirestoreStore keeps guild settings and relay links in Firestore, one
// document per guild / source channel.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestore(ctx context.Context, projectID string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// GetSettings returns the stored settings for guildID, or (nil, nil) when
// the guild has never been configured.
func (s *FirestoreStore) GetSettings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	doc, err := s.client.Collection(settingsCollection).Doc(guildID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get settings for guild %s: %w", guildID, err)
	}

	var settings models.GuildSettings
	if err := doc.DataTo(&settings); err != nil {
		return nil, fmt.Errorf("unmarshal settings for guild %s: %w", guildID, err)
	}
	return &settings, nil
}

func (s *FirestoreStore) SetSettings(ctx context.Context, guildID string, settings models.GuildSettings) error {
	_, err := s.client.Collection(settingsCollection).Doc(guildID).Set(ctx, settings)
	if err != nil {
		return fmt.Errorf("set settings for guild %s: %w", guildID, err)
	}
	return nil
}

type channelLink struct {
	DestChannelID string `firestore:"destChannelID"`
}

// GetLink returns the relay destination for a source channel, or "" when
// no link is configured.
func (s *FirestoreStore) GetLink(ctx context.Context, sourceChannelID string) (string, error) {
	doc, err := s.client.Collection(linksCollection).Doc(sourceChannelID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", nil
		}
		return "", fmt.Errorf("get link for channel %s: %w", sourceChannelID, err)
	}
	var link channelLink
	if err := doc.DataTo(&link); err != nil {
		return "", fmt.Errorf("unmarshal link for channel %s: %w", sourceChannelID, err)
	}
	return link.DestChannelID, nil
}

func (s *FirestoreStore) SetLink(ctx context.Context, sourceChannelID, destChannelID string) error {
	_, err := s.client.Collection(linksCollection).Doc(sourceChannelID).Set(ctx, channelLink{DestChannelID: destChannelID})
	if err != nil {
		return fmt.Errorf("set link %s -> %s: %w", sourceChannelID, destChannelID, err)
	}
	return nil
}

func (s *FirestoreStore) ClearLink(ctx context.Context, sourceChannelID string) error {
	_, err := s.client.Collection(linksCollection).Doc(sourceChannelID).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("clear link for channel %s: %w", sourceChannelID, err)
	}
	return nil
}

// ListLinks returns all relay mappings, for the status command.
func (s *FirestoreStore) ListLinks(ctx context.Context) (map[string]string, error) {
	links := make(map[string]string)
	iter := s.client.Collection(linksCollection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate links: %w", err)
		}
		var link channelLink
		if err := doc.DataTo(&link); err != nil {
			continue
		}
		links[doc.Ref.ID] = link.DestChannelID
	}
	return links, nil
}
