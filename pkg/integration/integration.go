package integration

import (
	"errors"
	"fmt"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
)

var (
	ErrUnknownType         = errors.New("unknown integration type")
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrNoSource            = errors.New("integration type has no event source")
	ErrMissingCredentials  = errors.New("integration credentials are missing")
)

type Type string

const (
	TypeManual         Type = "manual"
	TypeGoogleCalendar Type = "google-calendar"
	TypeLinear         Type = "linear"
	TypeClickUp        Type = "clickup"
	TypeNotion         Type = "notion"
	TypeGitHub         Type = "github"
	TypeSlack          Type = "slack"
	TypeOutlook        Type = "outlook"
)

const DefaultManualId = "manual-default"

type Integration struct {
	Id           string     `json:"id"`
	Type         Type       `json:"type"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Icon         string     `json:"icon"`
	Color        string     `json:"color"`
	BaseURL      string     `json:"baseUrl,omitempty"`
	IsConnected  bool       `json:"isConnected"`
	APIKey       string     `json:"apiKey,omitempty"`
	RefreshToken string     `json:"refreshToken,omitempty"`
	FeedURL      string     `json:"feedUrl,omitempty"`
	LastSync     *time.Time `json:"lastSync,omitempty"`
}

// Credentials are the secrets a source needs. Empty fields leave the stored value untouched.
type Credentials struct {
	APIKey       string `json:"apiKey"`
	RefreshToken string `json:"refreshToken"`
	FeedURL      string `json:"feedUrl"`
}

// Ref describes the integration on the events it produces.
func (i Integration) Ref(externalId, url string) calendar.IntegrationRef {
	return calendar.IntegrationRef{
		Type:       string(i.Type),
		Name:       i.Name,
		Icon:       i.Icon,
		Color:      i.Color,
		ExternalId: externalId,
		URL:        url,
	}
}

// EventUID is the UID of an imported event: "<integrationId>:<externalId>".
func (i Integration) EventUID(externalId string) string {
	return i.Id + ":" + externalId
}

var catalog = map[Type]Integration{
	TypeManual: {
		Type:        TypeManual,
		Name:        "Manual Events",
		Description: "Create and manage events manually in the calendar",
		Icon:        "lucide:calendar",
		Color:       "#6366f1",
	},
	TypeGoogleCalendar: {
		Type:        TypeGoogleCalendar,
		Name:        "Google Calendar",
		Description: "Sync events and meetings from your Google Calendar",
		Icon:        "logos:google-calendar",
		Color:       "#4285f4",
		BaseURL:     "https://www.googleapis.com/calendar/v3",
	},
	TypeLinear: {
		Type:        TypeLinear,
		Name:        "Linear",
		Description: "Import issues, project deadlines, and sprint planning",
		Icon:        "simple-icons:linear",
		Color:       "#5e6ad2",
		BaseURL:     "https://api.linear.app/graphql",
	},
	TypeClickUp: {
		Type:        TypeClickUp,
		Name:        "ClickUp",
		Description: "Sync tasks, due dates, and project milestones",
		Icon:        "simple-icons:clickup",
		Color:       "#7b68ee",
		BaseURL:     "https://api.clickup.com/api/v2",
	},
	TypeNotion: {
		Type:        TypeNotion,
		Name:        "Notion",
		Description: "Import database items, deadlines, and content schedules",
		Icon:        "simple-icons:notion",
		Color:       "#000000",
		BaseURL:     "https://api.notion.com/v1",
	},
	TypeGitHub: {
		Type:        TypeGitHub,
		Name:        "GitHub",
		Description: "Track milestones, releases, and project deadlines",
		Icon:        "simple-icons:github",
		Color:       "#24292e",
		BaseURL:     "https://api.github.com",
	},
	TypeSlack: {
		Type:        TypeSlack,
		Name:        "Slack",
		Description: "Import scheduled messages, reminders, and meeting links",
		Icon:        "simple-icons:slack",
		Color:       "#4a154b",
		BaseURL:     "https://slack.com/api",
	},
	TypeOutlook: {
		Type:        TypeOutlook,
		Name:        "Outlook Calendar",
		Description: "Sync events and meetings from Microsoft Outlook",
		Icon:        "simple-icons:microsoftoutlook",
		Color:       "#0078d4",
		BaseURL:     "https://graph.microsoft.com/v1.0",
	},
}

// Catalog returns the catalog entry of t.
func Catalog(t Type) (Integration, error) {
	entry, ok := catalog[t]
	if !ok {
		return Integration{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return entry, nil
}

func ParseType(s string) (Type, error) {
	if _, err := Catalog(Type(s)); err != nil {
		return "", err
	}
	return Type(s), nil
}

// DefaultIntegrations is the list a user starts with: the connected manual integration.
func DefaultIntegrations() []Integration {
	manual := catalog[TypeManual]
	manual.Id = DefaultManualId
	manual.IsConnected = true
	return []Integration{manual}
}

var eventColors = map[Type]calendar.Color{
	TypeGoogleCalendar: calendar.ColorBlue,
	TypeClickUp:        calendar.ColorPurple,
	TypeOutlook:        calendar.ColorOrange,
}

// EventColor is the palette color of the events imported by the integration.
func (i Integration) EventColor() calendar.Color {
	if c, ok := eventColors[i.Type]; ok {
		return c
	}
	return calendar.ColorGray
}
