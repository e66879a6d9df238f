package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/agentscope/core/internal/models"
)

const copilotChatName = "Copilot Chat"

var channelNames = map[string]string{
	"msteams":     "Microsoft Teams",
	"teams":       "Microsoft Teams",
	"webchat":     "Web Chat",
	"directline":  "Direct Line",
	"facebook":    "Facebook Messenger",
	"slack":       "Slack",
	"telegram":    "Telegram",
	"skype":       "Skype",
	"sms":         "SMS",
	"alexa":       "Alexa",
	"cortana":     "Cortana",
	"email":       "Email",
	"line":        "LINE",
	"omnichannel": "Omnichannel",
	"m365copilot": copilotChatName,
	"copilot":     copilotChatName,
}

// channelSynonyms collapse spellings that name the same surface.
var channelSynonyms = strings.NewReplacer("microsoft", "ms", "messenger", "msg")

// FriendlyChannelName maps a platform channel id to its display name. Unknown
// ids are returned unchanged.
func FriendlyChannelName(key string) string {
	if name, ok := channelNames[strings.ToLower(key)]; ok {
		return name
	}
	return key
}

// ExtractChannels reads the channels declared in the agent's configuration
// and manifest. Each case-folded channel id is reported once.
func ExtractChannels(agent models.AgentRecord) []models.Dependency {
	var channels []models.Dependency
	seen := make(map[string]bool)

	if cfg := decodeObject(agent.Configuration); cfg != nil {
		entries, _ := cfg["channels"].([]any)
		for i, entry := range entries {
			key := channelKey(entry, i)
			folded := strings.ToLower(key)
			if seen[folded] {
				continue
			}
			seen[folded] = true
			channels = append(channels, models.Dependency{
				Kind: models.KindChannel,
				Type: folded,
				Ref:  FriendlyChannelName(key),
			})
		}
	}

	manifest := decodeObject(agent.ApplicationManifestInformation)
	if manifest == nil {
		return channels
	}

	if copilotChatEnabled(manifest) && indexOfChannel(channels, "copilot", "teams") < 0 {
		channels = append(channels, models.Dependency{
			Kind: models.KindChannel,
			Type: "copilot",
			Ref:  copilotChatName,
		})
	}

	if details := teamsDetails(manifest); len(details) > 0 {
		if i := indexOfChannel(channels, "teams"); i >= 0 {
			if channels[i].Details == nil {
				channels[i].Details = make(map[string]string, len(details))
			}
			for k, v := range details {
				channels[i].Details[k] = v
			}
		}
	}

	return channels
}

// DedupChannels keeps the first channel per normalized display name.
// Applying it to its own output returns the same list.
func DedupChannels(channels []models.Dependency) []models.Dependency {
	out := make([]models.Dependency, 0, len(channels))
	seen := make(map[string]bool, len(channels))
	for _, ch := range channels {
		key := normalizeChannelName(ch.Ref)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ch)
	}
	return out
}

func normalizeChannelName(name string) string {
	folded := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
	return channelSynonyms.Replace(folded)
}

func channelKey(entry any, index int) string {
	switch v := entry.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case map[string]any:
		if s, ok := stringField(v, "channelId", "name"); ok {
			return s
		}
	}
	return fmt.Sprintf("Channel %d", index+1)
}

// indexOfChannel returns the first channel whose id or name mentions any of
// the given words, or -1.
func indexOfChannel(channels []models.Dependency, words ...string) int {
	for i, ch := range channels {
		haystack := strings.ToLower(ch.Type + " " + ch.Ref)
		if containsAny(haystack, words) {
			return i
		}
	}
	return -1
}

func copilotChatEnabled(manifest map[string]any) bool {
	if nested, ok := manifest["copilotChat"].(map[string]any); ok {
		if enabled, ok := nested["isEnabled"].(bool); ok && enabled {
			return true
		}
	}
	for _, key := range []string{"isCopilotChatEnabled", "copilotChatEnabled"} {
		if enabled, ok := manifest[key].(bool); ok && enabled {
			return true
		}
	}
	return false
}

func teamsDetails(manifest map[string]any) map[string]string {
	details := make(map[string]string)
	if teams, ok := manifest["teams"].(map[string]any); ok {
		if s, ok := stringField(teams, "appId"); ok {
			details["appId"] = s
		}
		if s, ok := stringField(teams, "version"); ok {
			details["version"] = s
		}
	}
	if _, ok := details["appId"]; !ok {
		if s, ok := stringField(manifest, "teamsAppId"); ok {
			details["appId"] = s
		}
	}
	if _, ok := details["version"]; !ok {
		if s, ok := stringField(manifest, "teamsVersion"); ok {
			details["version"] = s
		}
	}
	return details
}
