package domain

import "github.com/mitchellh/mapstructure"

// Title 是 Normalizer 的输出（对外稳定的记录结构）。
//
// 约束：
// - 字段名（json tag）与回退值类型属于对外契约，不可随意变更
// - 可空字段用指针/any 表示（JSON 为 null）；列表字段必须非 nil（JSON 为 []）
// - 构造完成后只读；series 字段通过 Record().Merge 合并，不回写 Title
type Title struct {
	ID            string `json:"id"`
	ReviewAPIPath string `json:"review_api_path"`
	IMDb          string `json:"imdb"`

	ContentType      *string `json:"contentType"`
	ContentRating    string  `json:"contentRating"`
	IsSeries         bool    `json:"isSeries"`
	ProductionStatus *string `json:"productionStatus"`
	IsReleased       bool    `json:"isReleased"`

	Title         *string  `json:"title"`
	OriginalTitle *string  `json:"originaltitle"`
	Image         *string  `json:"image"`
	Images        []string `json:"images"`

	Plot           string `json:"plot"`
	Runtime        string `json:"runtime"`
	RuntimeSeconds int    `json:"runtimeSeconds"`

	Rating Rating   `json:"rating"`
	Award  Award    `json:"award"`
	Genre  []string `json:"genre"`

	ReleaseDetailed ReleaseDetailed `json:"releaseDetailed"`
	Year            *int            `json:"year"`

	SpokenLanguages  []SpokenLanguage `json:"spokenLanguages"`
	FilmingLocations []string         `json:"filmingLocations"`

	Actors      []string `json:"actors"`
	ActorsV2    []Person `json:"actors_v2"`
	Creators    []string `json:"creators"`
	CreatorsV2  []Person `json:"creators_v2"`
	Directors   []string `json:"directors"`
	DirectorsV2 []Person `json:"directors_v2"`
	Writers     []string `json:"writers"`
	WritersV2   []Person `json:"writers_v2"`

	TopCredits []CreditGroup `json:"top_credits"`
}

type Rating struct {
	Count int     `json:"count"`
	Star  float64 `json:"star"`
}

type Award struct {
	Wins        int `json:"wins"`
	Nominations int `json:"nominations"`
}

// ReleaseDetailed 同时暴露校验后的合成日期与原样透出的三个分量。
// Day/Month/Year 不做任何转换（原始 JSON 值，缺失为 null），供需要部分日期的调用方使用。
type ReleaseDetailed struct {
	Date            *string    `json:"date"` // ISO-8601 UTC；任一分量非法即为 null
	Day             any        `json:"day"`
	Month           any        `json:"month"`
	Year            any        `json:"year"`
	ReleaseLocation Location   `json:"releaseLocation"`
	OriginLocations []Location `json:"originLocations"`
}

type Location struct {
	Country *string `json:"country"`
	CCA2    *string `json:"cca2"`
}

type SpokenLanguage struct {
	Language *string `json:"language"`
	ID       *string `json:"id"`
}

// Person 是富投影（variant "2"）的单个署名：缺名时 ID/Name 均为 null。
type Person struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

type CreditGroup struct {
	ID      *string  `json:"id"`
	Name    *string  `json:"name"`
	Credits []string `json:"credits"`
}

// Record 把 Title 展平为顶层 map（嵌套结构体转为 map，其余值原样保留）。
func (t Title) Record() (Record, error) {
	out := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(t); err != nil {
		return nil, err
	}
	return Record(out), nil
}
