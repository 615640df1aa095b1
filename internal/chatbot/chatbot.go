// Package chatbot answers common questions with canned guidance and
// keeps a short per-session transcript in Redis.
package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/saludgo/platform/pkg/logging"
)

const (
	transcriptPrefix = "chat:transcript:"
	transcriptTTL    = 24 * time.Hour
	transcriptCap    = 50
)

// advisoryFooter closes every reply so nobody mistakes the bot for a
// clinician.
const advisoryFooter = "This assistant shares general guidance only and is not a medical diagnosis. For emergencies call your local health center."

// TranscriptEntry is one exchange in a chat session.
type TranscriptEntry struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// Responder matches keywords in visitor messages and records the
// exchange under a session id.
type Responder struct {
	rdb    *redis.Client
	logger *logging.Logger
	clock  func() time.Time
}

// NewResponder creates a chatbot responder. The Redis client is
// optional; without it replies still work but transcripts are not
// kept.
func NewResponder(rdb *redis.Client, logger *logging.Logger) *Responder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Responder{rdb: rdb, logger: logger, clock: time.Now}
}

type rule struct {
	keywords []string
	answer   string
}

var rules = []rule{
	{
		keywords: []string{"appointment", "cita", "book", "schedule"},
		answer:   "You can book an appointment from the Appointments page once you are signed in. Each day has a limited number of slots, so if your preferred date is full try a nearby one.",
	},
	{
		keywords: []string{"campaign", "campaña", "jornada", "vaccin"},
		answer:   "Upcoming health campaigns are listed on the landing page. Each entry shows the municipality and the dates the brigade will be there.",
	},
	{
		keywords: []string{"medic", "pill", "dose", "pharmacy", "farmacia"},
		answer:   "Medication deliveries assigned to you appear under My Medications, ordered by delivery date. You will also get an email when a new delivery is scheduled.",
	},
	{
		keywords: []string{"volunteer", "voluntari", "help out"},
		answer:   "Thank you for offering to help. Use the volunteer availability form to tell us which days and hours you are free, and a coordinator will reach out.",
	},
	{
		keywords: []string{"contact", "phone", "telefono", "email", "reach"},
		answer:   "You can reach the coordination team through the contact details on the landing page, or leave a community report and we will follow up.",
	},
}

const fallbackAnswer = "I did not quite catch that. You can ask me about appointments, health campaigns, medications, volunteering, or how to contact us."

// Reply answers a message and appends it to the session transcript.
// When sessionID is empty a new one is issued and returned.
func (r *Responder) Reply(ctx context.Context, sessionID, message string) (string, string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", "", fmt.Errorf("chatbot: message is required")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	answer := answerFor(message)
	r.appendTranscript(ctx, sessionID, TranscriptEntry{
		Question: message,
		Answer:   answer,
		AskedAt:  r.clock().UTC(),
	})
	return sessionID, answer, nil
}

func answerFor(message string) string {
	lowered := strings.ToLower(message)
	for _, rl := range rules {
		for _, kw := range rl.keywords {
			if strings.Contains(lowered, kw) {
				return rl.answer + "\n\n" + advisoryFooter
			}
		}
	}
	return fallbackAnswer + "\n\n" + advisoryFooter
}

func (r *Responder) appendTranscript(ctx context.Context, sessionID string, entry TranscriptEntry) {
	if r.rdb == nil {
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		r.logger.Warn("failed to encode transcript entry", "error", err)
		return
	}
	key := transcriptPrefix + sessionID
	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, raw)
	pipe.LTrim(ctx, key, -transcriptCap, -1)
	pipe.Expire(ctx, key, transcriptTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("failed to store chat transcript", "session_id", sessionID, "error", err)
	}
}

// Transcript returns the recorded exchanges for a session, oldest
// first.
func (r *Responder) Transcript(ctx context.Context, sessionID string) ([]TranscriptEntry, error) {
	if r.rdb == nil || sessionID == "" {
		return nil, nil
	}
	raws, err := r.rdb.LRange(ctx, transcriptPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("chatbot: read transcript: %w", err)
	}
	entries := make([]TranscriptEntry, 0, len(raws))
	for _, raw := range raws {
		var entry TranscriptEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
