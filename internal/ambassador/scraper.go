package ambassador

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	errx "github.com/Market-intel-core-v1/server/internal/core/error"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/goccy/go-json"
	"golang.org/x/net/html"
)

const (
	tiktokDataScriptID = "__UNIVERSAL_DATA_FOR_REHYDRATION__"
	maxPageBytes       = 4 << 20
)

var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Referer":         "https://www.google.com/",
}

// ProfileSource fetches one public profile by username.
type ProfileSource interface {
	Fetch(ctx context.Context, username string) (*model.InfluencerProfile, error)
}

// Scraper reads public TikTok and Instagram profile pages.
type Scraper struct {
	httpClient *http.Client
	tiktokBase string
	instaBase  string
}

func NewScraper(cfg model.AmbassadorConfig) *Scraper {
	timeout := cfg.ScrapeTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		tiktokBase: strings.TrimRight(cfg.TikTokBaseURL, "/"),
		instaBase:  strings.TrimRight(cfg.InstaBaseURL, "/"),
	}
}

// Fetch tries TikTok first, then Instagram.
func (s *Scraper) Fetch(ctx context.Context, username string) (*model.InfluencerProfile, error) {
	p, tiktokErr := s.FetchTikTok(ctx, username)
	if tiktokErr == nil {
		return p, nil
	}
	p, instaErr := s.FetchInstagram(ctx, username)
	if instaErr == nil {
		return p, nil
	}
	return nil, errx.Unavailable(scrapeService, fmt.Errorf("%s: tiktok: %v; instagram: %w", username, tiktokErr, instaErr))
}

type tiktokPayload struct {
	DefaultScope struct {
		UserDetail struct {
			UserInfo struct {
				User struct {
					Signature string `json:"signature"`
				} `json:"user"`
				Stats struct {
					FollowerCount int64 `json:"followerCount"`
				} `json:"stats"`
			} `json:"userInfo"`
		} `json:"webapp.user-detail"`
	} `json:"__DEFAULT_SCOPE__"`
}

func (s *Scraper) FetchTikTok(ctx context.Context, username string) (*model.InfluencerProfile, error) {
	doc, err := s.page(ctx, s.tiktokBase+"/@"+username)
	if err != nil {
		return nil, err
	}

	script := findNode(doc, func(n *html.Node) bool {
		return n.Data == "script" && attr(n, "id") == tiktokDataScriptID
	})
	if script == nil || script.FirstChild == nil {
		return nil, fmt.Errorf("tiktok profile data not found")
	}

	var payload tiktokPayload
	if err := json.Unmarshal([]byte(script.FirstChild.Data), &payload); err != nil {
		return nil, fmt.Errorf("decode tiktok profile data: %w", err)
	}
	info := payload.DefaultScope.UserDetail.UserInfo
	if info.User.Signature == "" && info.Stats.FollowerCount == 0 {
		return nil, fmt.Errorf("tiktok user %s not present", username)
	}

	return &model.InfluencerProfile{
		Handle:    "@" + username,
		Platform:  PlatformTikTok,
		Bio:       info.User.Signature,
		Followers: info.Stats.FollowerCount,
		Text:      username + " " + info.User.Signature,
	}, nil
}

func (s *Scraper) FetchInstagram(ctx context.Context, username string) (*model.InfluencerProfile, error) {
	doc, err := s.page(ctx, s.instaBase+"/"+username+"/")
	if err != nil {
		return nil, err
	}

	meta := findNode(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attr(n, "property") == "og:description"
	})
	if meta == nil {
		return nil, fmt.Errorf("instagram description not found")
	}
	content := attr(meta, "content")
	if content == "" || strings.Contains(content, "Log in") {
		return nil, fmt.Errorf("instagram profile requires login")
	}

	bio := ""
	if i := strings.LastIndex(content, ":"); i >= 0 {
		bio = strings.ReplaceAll(strings.TrimSpace(content[i+1:]), `"`, "")
	}

	return &model.InfluencerProfile{
		Handle:    "@" + username,
		Platform:  PlatformInstagram,
		Bio:       bio,
		Followers: ParseFollowers(content),
		Text:      username + " " + bio,
	}, nil
}

// ParseFollowers reads the count before " Followers", e.g. "1.2M", "350K" or
// "12,345". Unparseable counts are 0.
func ParseFollowers(content string) int64 {
	part, _, found := strings.Cut(content, " Followers")
	if !found {
		return 0
	}
	part = strings.ReplaceAll(strings.TrimSpace(part), ",", "")

	mult := 1.0
	switch {
	case strings.HasSuffix(part, "M"):
		mult, part = 1_000_000, strings.TrimSuffix(part, "M")
	case strings.HasSuffix(part, "K"):
		mult, part = 1_000, strings.TrimSuffix(part, "K")
	}
	v, err := strconv.ParseFloat(part, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(v * mult))
}

func (s *Scraper) page(ctx context.Context, url string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

var _ ProfileSource = (*Scraper)(nil)
