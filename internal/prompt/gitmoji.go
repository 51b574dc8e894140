package prompt

import (
	"fmt"
	"strings"
)

type gitmoji struct {
	key         string
	emoji       string
	description string
}

// gitmojiTable is ordered by key so the rendered list is stable between
// runs. The trailing entries alias conventional-commit type names.
var gitmojiTable = []gitmoji{
	{"adhesive_bandage", "🩹", "Simple fix for a non-critical issue"},
	{"alembic", "⚗️", "Perform experiments"},
	{"alien", "👽️", "Update code due to external API changes"},
	{"ambulance", "🚑️", "Critical hotfix"},
	{"arrow_down", "⬇️", "Downgrade dependencies"},
	{"arrow_up", "⬆️", "Upgrade dependencies"},
	{"art", "🎨", "Improve structure / format of the code"},
	{"beers", "🍻", "Write code drunkenly"},
	{"bento", "🍱", "Add or update assets"},
	{"bookmark", "🔖", "Release / Version tags"},
	{"boom", "💥", "Introduce breaking changes"},
	{"bricks", "🧱", "Infrastructure related changes"},
	{"bug", "🐛", "Fix a bug"},
	{"building_construction", "🏗️", "Make architectural changes"},
	{"bulb", "💡", "Add or update comments in source code"},
	{"busts_in_silhouette", "👥", "Add or update contributor(s)"},
	{"camera_flash", "📸", "Add or update snapshots"},
	{"card_file_box", "🗃️", "Perform database related changes"},
	{"chart_with_upwards_trend", "📈", "Add or update analytics or track code"},
	{"children_crossing", "🚸", "Improve user experience / usability"},
	{"closed_lock_with_key", "🔐", "Add or update secrets"},
	{"clown_face", "🤡", "Mock things"},
	{"coffin", "⚰️", "Remove dead code"},
	{"construction", "🚧", "Work in progress"},
	{"construction_worker", "👷", "Add or update CI build system"},
	{"dizzy", "💫", "Add or update animations and transitions"},
	{"egg", "🥚", "Add or update an easter egg"},
	{"fire", "🔥", "Remove code or files"},
	{"globe_with_meridians", "🌐", "Internationalization and localization"},
	{"goal_net", "🥅", "Catch errors"},
	{"green_heart", "💚", "Fix CI Build"},
	{"hammer", "🔨", "Add or update development scripts"},
	{"heavy_minus_sign", "➖", "Remove a dependency"},
	{"heavy_plus_sign", "➕", "Add a dependency"},
	{"iphone", "📱", "Work on responsive design"},
	{"label", "🏷️", "Add or update types"},
	{"lipstick", "💄", "Add or update the UI and style files"},
	{"lock", "🔒️", "Fix security or privacy issues"},
	{"loud_sound", "🔊", "Add or update logs"},
	{"mag", "🔍️", "Improve SEO"},
	{"memo", "📝", "Add or update documentation"},
	{"money_with_wings", "💸", "Add sponsorships or money related infrastructure"},
	{"monocle_face", "🧐", "Data exploration/inspection"},
	{"mute", "🔇", "Remove logs"},
	{"necktie", "👔", "Add or update business logic"},
	{"package", "📦️", "Add or update compiled files or packages"},
	{"page_facing_up", "📄", "Add or update license"},
	{"passport_control", "🛂", "Work on code related to authorization, roles and permissions"},
	{"pencil2", "✏️", "Fix typos"},
	{"poop", "💩", "Write bad code that needs to be improved"},
	{"pushpin", "📌", "Pin dependencies to specific versions"},
	{"recycle", "♻️", "Refactor code"},
	{"rewind", "⏪️", "Revert changes"},
	{"rocket", "🚀", "Deploy stuff"},
	{"rotating_light", "🚨", "Fix compiler / linter warnings"},
	{"safety_vest", "🦺", "Add or update code related to validation"},
	{"see_no_evil", "🙈", "Add or update a .gitignore file"},
	{"seedling", "🌱", "Add or update seed files"},
	{"sparkles", "✨", "Introduce new features"},
	{"speech_balloon", "💬", "Add or update text and literals"},
	{"stethoscope", "🩺", "Add or update healthcheck"},
	{"tada", "🎉", "Begin a project"},
	{"technologist", "🧑‍💻", "Improve developer experience"},
	{"test_tube", "🧪", "Add a failing test"},
	{"thread", "🧵", "Add or update code related to multithreading or concurrency"},
	{"triangular_flag_on_post", "🚩", "Add, update, or remove feature flags"},
	{"truck", "🚚", "Move or rename resources (e.g.: files, paths, routes)"},
	{"twisted_rightwards_arrows", "🔀", "Merge branches"},
	{"wastebasket", "🗑️", "Deprecate code that needs to be cleaned up"},
	{"wheelchair", "♿️", "Improve accessibility"},
	{"white_check_mark", "✅", "Add, update, or pass tests"},
	{"wrench", "🔧", "Add or update configuration files"},
	{"zap", "⚡️", "Improve performance"},

	{"chore", "🔧", "Add or update configuration files"},
	{"docs", "📝", "Add or update documentation"},
	{"feat", "✨", "Introduce new features"},
	{"fix", "🐛", "Fix a bug"},
	{"perf", "⚡️", "Improve performance"},
	{"refactor", "♻️", "Refactor code"},
	{"style", "💄", "Add or update the UI and style files"},
	{"test", "✅", "Add, update, or pass tests"},
}

var gitmojiByKey = func() map[string]gitmoji {
	m := make(map[string]gitmoji, len(gitmojiTable))
	for _, g := range gitmojiTable {
		m[g.key] = g
	}
	return m
}()

// GitmojiFor returns the emoji for a commit type keyword, if any.
func GitmojiFor(commitType string) (string, bool) {
	g, ok := gitmojiByKey[commitType]
	return g.emoji, ok
}

// ApplyGitmoji prefixes a conventional "type: subject" message with the
// matching emoji. Messages without a recognized type pass through.
func ApplyGitmoji(message string) string {
	kind, rest, found := strings.Cut(message, ":")
	if !found {
		return message
	}
	g, ok := gitmojiByKey[strings.TrimSpace(kind)]
	if !ok {
		return message
	}
	return fmt.Sprintf("%s %s: %s", g.emoji, strings.TrimSpace(kind), strings.TrimSpace(rest))
}

// GitmojiList renders the selection list shown to the model.
func GitmojiList() string {
	lines := make([]string, 0, len(gitmojiTable))
	for _, g := range gitmojiTable {
		lines = append(lines, fmt.Sprintf("%s - :%s: - %s", g.emoji, g.key, g.description))
	}
	return strings.Join(lines, "\n")
}
