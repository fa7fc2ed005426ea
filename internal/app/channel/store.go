/*
Package channel contains the channel metadata and the append-only message log.

Channels are created once from a fixed seed set and never change afterwards;
messages are appended in arrival order and never mutated or deleted.
*/
package channel

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"commhub/internal/pkg/errs"
	"commhub/internal/pkg/logx"
	"commhub/internal/pkg/randx"
)

// MaxContentBytes caps the size of a single message's content.
const MaxContentBytes = 4096

// Message kinds accepted on the wire.
const (
	KindText         = "text"
	KindAnnouncement = "announcement"
)

// Channel describes a community channel. Membership editing is out of scope;
// Members stays empty and exists for wire compatibility.
type Channel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Members     []string `json:"members"`
}

// Message is one entry in the append-only per-channel log.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ChannelID string    `json:"channelId"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// seedChannels is the fixed channel set created at process start.
var seedChannels = []Channel{
	{ID: "general", Name: "General", Description: "General community discussions", Type: "general"},
	{ID: "announcements", Name: "Announcements", Description: "Important community announcements", Type: "announcements"},
	{ID: "events", Name: "Events", Description: "Community events and activities", Type: "events"},
}

// Store holds the channel set and the message log. Mutations arrive serialized
// through the hub loop; reads may run concurrently under the read lock.
type Store struct {
	mu       sync.RWMutex
	channels []Channel
	byID     map[string]struct{}
	messages []Message
	logger   zerolog.Logger
}

// NewStore constructs a Store seeded with the fixed channel set.
func NewStore() *Store {
	s := &Store{
		byID:   make(map[string]struct{}, len(seedChannels)),
		logger: logx.Logger().With().Str("component", "channel_store").Logger(),
	}

	for _, ch := range seedChannels {
		ch.Members = []string{}
		s.channels = append(s.channels, ch)
		s.byID[ch.ID] = struct{}{}
	}

	return s
}

// Channels returns the channel list in seed order.
func (s *Store) Channels() []Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channels := make([]Channel, len(s.channels))
	copy(channels, s.channels)
	return channels
}

// Exists reports whether a channel with the given id is present.
func (s *Store) Exists(channelID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byID[channelID]
	return ok
}

// Append validates and appends a message to the log. The channel must exist,
// the content must be non-blank after trimming and within the size cap, and
// the kind must be a known one (blank defaults to text).
func (s *Store) Append(channelID, authorID, content, kind string) (Message, *errs.CustomError) {
	if kind == "" {
		kind = KindText
	}
	if kind != KindText && kind != KindAnnouncement {
		return Message{}, errs.NewError(errs.ErrInvalidMessageType)
	}

	if strings.TrimSpace(content) == "" {
		return Message{}, errs.NewError(errs.ErrEmptyContent)
	}
	if len(content) > MaxContentBytes {
		return Message{}, errs.NewError(errs.ErrContentTooLong)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[channelID]; !ok {
		return Message{}, errs.NewError(errs.ErrUnknownChannel)
	}

	msg := Message{
		ID:        randx.MessageID(),
		UserID:    authorID,
		ChannelID: channelID,
		Content:   content,
		Type:      kind,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, msg)

	s.logger.Debug().
		Str("message_id", msg.ID).
		Str("channel_id", channelID).
		Msg("Message appended.")

	return msg, nil
}

// Recent returns messages across all channels with timestamp >= now-window,
// in insertion (ascending timestamp) order. It feeds the join snapshot.
func (s *Store) Recent(window time.Duration) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-window)

	recent := make([]Message, 0)
	for _, msg := range s.messages {
		if !msg.Timestamp.Before(cutoff) {
			recent = append(recent, msg)
		}
	}
	return recent
}

// RecentIn is Recent restricted to a single channel.
func (s *Store) RecentIn(channelID string, window time.Duration) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-window)

	recent := make([]Message, 0)
	for _, msg := range s.messages {
		if msg.ChannelID == channelID && !msg.Timestamp.Before(cutoff) {
			recent = append(recent, msg)
		}
	}
	return recent
}

// History returns the full log for one channel in insertion order.
func (s *Store) History(channelID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]Message, 0)
	for _, msg := range s.messages {
		if msg.ChannelID == channelID {
			history = append(history, msg)
		}
	}
	return history
}

// ByType returns up to limit messages of the given kind, newest first.
func (s *Store) ByType(kind string, limit int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Message, 0)
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Type == kind {
			matched = append(matched, s.messages[i])
			if limit > 0 && len(matched) == limit {
				break
			}
		}
	}
	return matched
}
