package series

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/payload"
	"github.com/John-Robertt/titlemeta/internal/title"
)

// Data 是合并进 title 记录的 series 专属字段。
type Data struct {
	AllSeasons []SeasonRef `json:"all_seasons"`
	Seasons    []Season    `json:"seasons"`
}

type SeasonRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	APIPath string `json:"api_path"`
}

// Season 是 episodes 页面当前展示的那一季（页面只渲染一季的分集）。
type Season struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Episodes []Episode `json:"episodes"`
}

type Episode struct {
	Idx           int           `json:"idx"`
	No            string        `json:"no"`
	ID            *string       `json:"id"`
	Title         *string       `json:"title"`
	Image         *string       `json:"image"`
	ImageLarge    *string       `json:"image_large"`
	Plot          *string       `json:"plot"`
	PublishedDate *string       `json:"publishedDate"`
	Rating        domain.Rating `json:"rating"`
}

// Enricher 通过 episodes 页面的数据岛补充 series 字段。
//
// 约束：与 title 页面共用同一个 PageFetcher（同一套重试/代理策略），自身不做重试。
type Enricher struct {
	Fetcher title.PageFetcher

	// BaseURL 与 title.Service.BaseURL 含义一致；为空时使用 title.CanonicalBaseURL。
	BaseURL string
}

func (e Enricher) pageURL(id domain.TitleID) string {
	u := strings.TrimSpace(e.BaseURL)
	if u == "" {
		u = title.CanonicalBaseURL
	}
	return strings.TrimRight(u, "/") + "/" + string(id) + "/episodes/"
}

// FetchSeries 实现 title.SeriesEnricher。
func (e Enricher) FetchSeries(ctx context.Context, id domain.TitleID) (map[string]any, error) {
	if e.Fetcher == nil {
		return nil, errors.New("未配置 PageFetcher")
	}
	html, err := e.Fetcher.Fetch(ctx, e.pageURL(id))
	if err != nil {
		return nil, err
	}
	props, err := title.Extract(html)
	if err != nil {
		return nil, err
	}
	d, err := Parse(id, props)
	if err != nil {
		return nil, err
	}
	return d.Fields()
}

// Parse 从 episodes 页面的 pageProps 中读取季列表与当前季的分集。
func Parse(id domain.TitleID, props payload.Node) (Data, error) {
	section := props.Get("contentData", "section")
	if !section.Truthy() {
		return Data{}, errors.New("episodes 页面缺少 contentData.section")
	}

	d := Data{AllSeasons: []SeasonRef{}, Seasons: []Season{}}
	for _, s := range section.Get("seasons").List() {
		v := s.Get("value").StringOr("")
		if v == "" {
			continue
		}
		d.AllSeasons = append(d.AllSeasons, SeasonRef{
			ID:      v,
			Name:    "Season " + s.Get("text").StringOr(v),
			APIPath: fmt.Sprintf("/title/%s/season/%s", id, v),
		})
	}

	items := section.Get("episodes", "items").List()
	if len(items) == 0 {
		return d, nil
	}

	current := section.Get("currentSeason").StringOr("")
	if current == "" {
		current = items[0].Get("season").StringOr("")
	}
	season := Season{ID: current, Name: "Season " + current, Episodes: make([]Episode, 0, len(items))}
	for i, it := range items {
		season.Episodes = append(season.Episodes, Episode{
			Idx:           i + 1,
			No:            it.Get("episode").StringOr(""),
			ID:            it.Get("id").StringPtr(),
			Title:         it.Get("titleText").StringPtr(),
			Image:         thumbnail(it.Get("image", "url").StringPtr()),
			ImageLarge:    it.Get("image", "url").StringPtr(),
			Plot:          it.Get("plot").StringPtr(),
			PublishedDate: title.ValidatedDate(it.Get("releaseDate")),
			Rating: domain.Rating{
				Count: it.Get("voteCount").IntOr(0),
				Star:  it.Get("aggregateRating").FloatOr(0),
			},
		})
	}
	d.Seasons = append(d.Seasons, season)
	return d, nil
}

// Fields 把 Data 展平为可直接合并进记录的顶层 map。
func (d Data) Fields() (map[string]any, error) {
	out := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: &out})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(d); err != nil {
		return nil, err
	}
	return out, nil
}

// thumbnailSuffix 是 IMDb 图片 CDN 的缩放参数（宽 280）。
const thumbnailSuffix = "._V1_QL75_UX280_.jpg"

// thumbnail 把原图地址改写为缩略图地址；地址里没有 ._V1_ 标记时原样返回。
func thumbnail(u *string) *string {
	if u == nil {
		return nil
	}
	i := strings.LastIndex(*u, "._V1_")
	if i < 0 {
		return u
	}
	s := (*u)[:i] + thumbnailSuffix
	return &s
}
