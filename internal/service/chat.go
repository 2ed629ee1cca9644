package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"bits/internal/domain"
)

// ChatFacts is the live state a chat reply may quote.
type ChatFacts struct {
	Condition       domain.SurgeCondition
	ActiveIncidents int
	CriticalZones   []string
	HighRiskZones   []string
}

// ChatRule answers messages its predicate accepts.
type ChatRule struct {
	Name    string
	Match   func(message string) bool
	Respond func(f ChatFacts) string
}

// arabicPrefixes are the attached article forms stripped before matching.
var arabicPrefixes = []string{"وال", "بال", "ال"}

// hasWord matches messages containing one of keywords as a whole word. An
// English plural "s" or an attached Arabic article does not stop a match.
func hasWord(keywords ...string) func(string) bool {
	return func(message string) bool {
		for _, w := range words(message) {
			for _, k := range keywords {
				if wordMatches(w, k) {
					return true
				}
			}
		}
		return false
	}
}

func words(message string) []string {
	return strings.FieldsFunc(message, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
	})
}

func wordMatches(word, keyword string) bool {
	if word == keyword {
		return true
	}
	if len(keyword) > 2 && strings.TrimSuffix(word, "s") == keyword {
		return true
	}
	for _, p := range arabicPrefixes {
		if rest, ok := strings.CutPrefix(word, p); ok && rest == keyword {
			return true
		}
	}
	return false
}

// ChatRules are evaluated in order; the first match answers.
var ChatRules = []ChatRule{
	{
		Name:  "incidents",
		Match: hasWord("incident", "accident", "closure", "closed", "حادث", "اغلاق", "إغلاق"),
		Respond: func(f ChatFacts) string {
			if f.ActiveIncidents == 0 {
				return "There are no active road incidents right now."
			}
			msg := fmt.Sprintf("There are %d active road incidents.", f.ActiveIncidents)
			if len(f.CriticalZones) > 0 {
				msg += " Critical closures in: " + strings.Join(f.CriticalZones, ", ") + "."
			}
			return msg
		},
	},
	{
		Name:  "price",
		Match: hasWord("price", "fare", "cost", "surge", "سعر", "كلفة"),
		Respond: func(f ChatFacts) string {
			return fmt.Sprintf("The current fare multiplier is %.2fx (weather %.1fx, time %.1fx). A standard %d IQD ride costs %d IQD.",
				f.Condition.Multiplier, f.Condition.WeatherMultiplier, f.Condition.TimeMultiplier,
				dashboardBaseFare, int64(float64(dashboardBaseFare)*f.Condition.Multiplier))
		},
	},
	{
		Name:  "weather",
		Match: hasWord("weather", "rain", "rainy", "raining", "sandstorm", "طقس", "مطر"),
		Respond: func(f ChatFacts) string {
			return fmt.Sprintf("Current weather is %s, adding a %.1fx multiplier.", f.Condition.Weather, f.Condition.WeatherMultiplier)
		},
	},
	{
		Name:  "traffic",
		Match: hasWord("traffic", "peak", "congestion", "jam", "زحام", "ذروة"),
		Respond: func(f ChatFacts) string {
			msg := "It is not peak hour."
			if f.Condition.IsPeak {
				msg = "It is peak hour; expect heavier traffic."
			}
			if len(f.HighRiskZones) > 0 {
				msg += " High-risk zones: " + strings.Join(f.HighRiskZones, ", ") + "."
			}
			return msg
		},
	},
	{
		Name:  "greeting",
		Match: hasWord("hello", "hi", "salam", "مرحبا", "السلام"),
		Respond: func(ChatFacts) string {
			return "Hello! Ask me about fares, incidents, weather or traffic in Baghdad."
		},
	},
}

const chatFallback = "Sorry, I did not understand. Try asking about fares, incidents, weather or traffic."

// MatchRule returns the first rule accepting message.
func MatchRule(rules []ChatRule, message string) (ChatRule, bool) {
	normalized := strings.ToLower(strings.TrimSpace(message))
	for _, r := range rules {
		if r.Match(normalized) {
			return r, true
		}
	}
	return ChatRule{}, false
}

// ChatReply is the bot's answer to one message.
type ChatReply struct {
	SessionID string
	Rule      string
	Text      string
}

// ChatService answers keyword chat messages from live state.
type ChatService struct {
	incidents   *IncidentService
	conditions  *ConditionsService
	predictions *PredictionService
	sessions    *SessionService
	rules       []ChatRule
}

// NewChatService creates a new ChatService.
func NewChatService(
	incidents *IncidentService,
	conditions *ConditionsService,
	predictions *PredictionService,
	sessions *SessionService,
) *ChatService {
	return &ChatService{
		incidents:   incidents,
		conditions:  conditions,
		predictions: predictions,
		sessions:    sessions,
		rules:       ChatRules,
	}
}

// Reply answers message and appends the exchange to the session history.
func (s *ChatService) Reply(ctx context.Context, sessionID, message string, now time.Time) (*ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	reply := &ChatReply{Rule: "fallback", Text: chatFallback}
	if rule, ok := MatchRule(s.rules, message); ok {
		facts, err := s.facts(ctx, now)
		if err != nil {
			return nil, err
		}
		reply.Rule = rule.Name
		reply.Text = rule.Respond(facts)
	}

	state, err := s.sessions.Update(ctx, sessionID, func(state *domain.SessionState) {
		state.ChatHistory = append(state.ChatHistory,
			domain.ChatMessage{Role: "user", Text: message, At: now},
			domain.ChatMessage{Role: "bot", Text: reply.Text, At: now},
		)
	})
	if err != nil {
		return nil, err
	}
	reply.SessionID = state.ID

	return reply, nil
}

func (s *ChatService) facts(ctx context.Context, now time.Time) (ChatFacts, error) {
	active, err := s.incidents.ActiveIncidents(ctx)
	if err != nil {
		return ChatFacts{}, err
	}

	facts := ChatFacts{
		Condition:       s.conditions.Current(ctx, now),
		ActiveIncidents: len(active),
		HighRiskZones:   Recommendations(s.predictions.AllPredictions(now)),
	}
	for _, i := range active {
		if i.Severity == domain.SeverityCritical {
			facts.CriticalZones = append(facts.CriticalZones, i.Zone)
		}
	}
	return facts, nil
}
