package ambassador

import (
	"strings"

	"github.com/Market-intel-core-v1/server/internal/market/model"
)

const (
	PlatformTikTok    = "TikTok"
	PlatformInstagram = "Instagram"
)

// fallbackProfiles is served when live scraping is blocked or skipped.
var fallbackProfiles = []model.InfluencerProfile{
	{
		Handle:    "@mkbhd",
		Platform:  PlatformTikTok,
		Bio:       "Marques Brownlee. Quality Tech Videos. YouTuber | Geek | Consumer Electronics | Tech Reviews.",
		Followers: 18_500_000,
		Text:      "mkbhd technology gadgets smartphones reviews tech marques brownlee",
	},
	{
		Handle:    "@gordonramsayofficial",
		Platform:  PlatformTikTok,
		Bio:       "Chef Gordon Ramsay. Cooking, food, recipes, and kitchen nightmares. Idiot sandwich.",
		Followers: 38_000_000,
		Text:      "gordonramsayofficial cooking food chef recipes kitchen ramsey",
	},
	{
		Handle:    "@wisdm8",
		Platform:  PlatformTikTok,
		Bio:       "Fashion content creator. Stylist. OOTD and runway fashion analysis.",
		Followers: 9_000_000,
		Text:      "wisdm8 fashion style clothes ootd runway designer",
	},
	{
		Handle:    "@mrbeast",
		Platform:  PlatformTikTok,
		Bio:       "I want to make the world a better place. Challenges, charity, and massive giveaways.",
		Followers: 92_000_000,
		Text:      "mrbeast charity challenges giveaways viral content money",
	},
	{
		Handle:    "@khaby.lame",
		Platform:  PlatformTikTok,
		Bio:       "If you want to laugh, you are in the right place. Comedy, life hacks, funny skits.",
		Followers: 162_000_000,
		Text:      "khaby.lame comedy funny viral skits life hacks",
	},
	{
		Handle:    "@addisonre",
		Platform:  PlatformTikTok,
		Bio:       "Dance, lifestyle, beauty, and makeup. AR Beauty founder.",
		Followers: 88_000_000,
		Text:      "addisonre dance beauty makeup lifestyle fashion",
	},
	{
		Handle:    "@tech_guru_daily",
		Platform:  PlatformInstagram,
		Bio:       "Daily tech news, leaks, and unboxing new gadgets. iPhone vs Android comparisons.",
		Followers: 125_000,
		Text:      "tech_guru_daily technology news gadgets unboxing mobile",
	},
	{
		Handle:    "@lifestyle_lisa",
		Platform:  PlatformInstagram,
		Bio:       "Wellness coach & Yoga instructor. Vegan recipes and healthy living tips.",
		Followers: 450_000,
		Text:      "lifestyle_lisa health yoga vegan wellness fitness",
	},
}

// FallbackProfiles returns a copy of the built-in dataset.
func FallbackProfiles() []model.InfluencerProfile {
	out := make([]model.InfluencerProfile, len(fallbackProfiles))
	copy(out, fallbackProfiles)
	return out
}

// fallbackFor returns the dataset entry whose handle contains username.
func fallbackFor(username string) (model.InfluencerProfile, bool) {
	for _, p := range fallbackProfiles {
		if strings.Contains(p.Handle, username) {
			return p, true
		}
	}
	return model.InfluencerProfile{}, false
}
