package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// InstructionPreset is a named instruction style applied on top of the
// base guidelines.
type InstructionPreset struct {
	Name         string
	Description  string
	Instructions string
	Emoji        string
}

var presetLibrary = map[string]InstructionPreset{
	"default": {
		Name:         "Default",
		Description:  "Standard professional style",
		Instructions: "Provide clear, concise, and professional responses. Focus on accuracy and relevance.",
		Emoji:        "📝",
	},
	"detailed": {
		Name:         "Detailed",
		Description:  "Provide more context and explanation",
		Instructions: "Offer comprehensive explanations, including background information, potential impacts, and related considerations. Aim for thoroughness while maintaining clarity.",
		Emoji:        "🔍",
	},
	"concise": {
		Name:         "Concise",
		Description:  "Short and to-the-point responses",
		Instructions: "Keep responses brief and focused on the core information. Prioritize essential details and avoid unnecessary elaboration.",
		Emoji:        "🎯",
	},
	"technical": {
		Name:         "Technical",
		Description:  "Focus on technical details",
		Instructions: "Emphasize technical aspects in your responses. Include specific terminology, methodologies, or performance impacts where relevant. Assume a technically proficient audience.",
		Emoji:        "⚙️",
	},
	"storyteller": {
		Name:         "Storyteller",
		Description:  "Frame information as part of an ongoing narrative",
		Instructions: "Present information as if it's part of a larger story. Use narrative elements to describe changes, developments, or features. Connect individual elements to create a cohesive narrative arc.",
		Emoji:        "📚",
	},
	"emoji-lover": {
		Name:         "Emoji Enthusiast",
		Description:  "Use emojis to enhance communication",
		Instructions: "Incorporate relevant emojis throughout your responses to add visual flair and quickly convey the nature of the information. Ensure emojis complement rather than replace clear communication.",
		Emoji:        "😍",
	},
	"formal": {
		Name:         "Formal",
		Description:  "Maintain a highly professional and formal tone",
		Instructions: "Use formal language and structure in your responses. Avoid colloquialisms and maintain a respectful, business-like tone throughout.",
		Emoji:        "🎩",
	},
	"explanatory": {
		Name:         "Explanatory",
		Description:  "Focus on explaining concepts and changes",
		Instructions: "Prioritize explaining the 'why' behind information or changes. Provide context, rationale, and potential implications to foster understanding.",
		Emoji:        "💡",
	},
	"user-focused": {
		Name:         "User-Focused",
		Description:  "Emphasize user impact and benefits",
		Instructions: "Frame information in terms of its impact on users or stakeholders. Highlight benefits, improvements, and how changes affect the user experience.",
		Emoji:        "👥",
	},
	"cosmic": {
		Name:         "Cosmic Oracle",
		Description:  "Channel mystical and cosmic energy",
		Instructions: "Envision yourself as a cosmic entity, peering into the vast expanse of possibilities. Describe information as if they are celestial events or shifts in the fabric of reality. Use mystical and space-themed language to convey the essence and impact of each element.",
		Emoji:        "🔮",
	},
	"academic": {
		Name:         "Academic",
		Description:  "Scholarly and research-oriented style",
		Instructions: "Adopt an academic tone, citing relevant sources or methodologies where applicable. Use precise language and maintain a formal, analytical approach to the subject matter.",
		Emoji:        "🎓",
	},
	"comparative": {
		Name:         "Comparative",
		Description:  "Highlight differences and similarities",
		Instructions: "Focus on comparing and contrasting elements. Identify key differences and similarities, and explain their significance or implications.",
		Emoji:        "⚖️",
	},
	"future-oriented": {
		Name:         "Future-Oriented",
		Description:  "Emphasize future implications and possibilities",
		Instructions: "Frame information in terms of its future impact. Discuss potential developments, long-term consequences, and how current changes might shape future scenarios.",
		Emoji:        "🔮",
	},
	"time-traveler": {
		Name:         "Time Traveler",
		Description:  "Narrate from different points in time",
		Instructions: "Imagine you're a time traveler, jumping between past, present, and future. Describe current information as if you're reporting from different time periods. Use appropriate historical or futuristic language and references, and highlight how perspectives change across time.",
		Emoji:        "⏳",
	},
	"chef-special": {
		Name:         "Chef's Special",
		Description:  "Present information as a culinary experience",
		Instructions: "Treat the information as ingredients in a gourmet meal. Describe changes or updates as if you're crafting a recipe or presenting a dish. Use culinary terms, cooking metaphors, and sensory descriptions to make the content more flavorful and engaging.",
		Emoji:        "👩‍🍳",
	},
	"superhero-saga": {
		Name:         "Superhero Saga",
		Description:  "Frame information in a superhero universe",
		Instructions: "Imagine the project or product as a superhero universe. Describe features, changes, or updates as if they're superpowers, epic battles, or heroic adventures. Use dramatic, comic-book style language and frame developments in terms of heroes, villains, and saving the day.",
		Emoji:        "🦸",
	},
	"nature-documentary": {
		Name:         "Nature Documentary",
		Description:  "Narrate as if observing a natural phenomenon",
		Instructions: "Channel your inner David Attenborough and describe the information as if you're narrating a nature documentary. Treat code, features, or processes as flora and fauna in a complex ecosystem. Use a tone of fascination and wonder, and explain interactions and developments as if observing them in their natural habitat.",
		Emoji:        "🌿",
	},
	"chill": {
		Name:         "Chill",
		Description:  "Professional but fun commit messages",
		Instructions: "Use a style that's professionally informative but with a touch of clever humor. Keep it light and engaging while still conveying the essential information.",
		Emoji:        "😎",
	},
	"hater": {
		Name:         "Hater",
		Description:  "Hyper-critical and brutally honest style",
		Instructions: "Adopt a hyper-critical approach. Focus on finding flaws, weaknesses, and potential issues. Provide brutally honest feedback and don't hesitate to point out even minor imperfections.",
		Emoji:        "💢",
	},
}

// PresetByKey looks up a preset. Unknown keys return ok=false so the
// caller can report the valid names.
func PresetByKey(key string) (InstructionPreset, bool) {
	preset, ok := presetLibrary[key]
	return preset, ok
}

// PresetKeys returns all preset keys sorted.
func PresetKeys() []string {
	keys := make([]string, 0, len(presetLibrary))
	for key := range presetLibrary {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ListPresets formats the preset library for display, default first and
// the rest ordered by display name.
func ListPresets() string {
	type entry struct {
		key    string
		preset InstructionPreset
	}
	entries := make([]entry, 0, len(presetLibrary))
	for key, preset := range presetLibrary {
		entries = append(entries, entry{key: key, preset: preset})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].preset.Name == "Default" {
			return true
		}
		if entries[j].preset.Name == "Default" {
			return false
		}
		return entries[i].preset.Name < entries[j].preset.Name
	})

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s - %s - %s - %s", e.key, e.preset.Emoji, e.preset.Name, e.preset.Description))
	}
	return strings.Join(lines, "\n")
}
