package title

import (
	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/payload"
)

// CanonicalBaseURL 是输出记录中 imdb 链接的固定前缀（与实际抓取用的 BaseURL 无关）。
const CanonicalBaseURL = "https://www.imdb.com/title/"

// Normalize 把 pageProps 归一化为 Title。
//
// 这是全函数：任何深层字段缺失/类型不符都走回退值，不会失败。
// 回退值按字段固定（null / "N/A" / "" / 0 / false / []），属于对外契约。
func Normalize(id domain.TitleID, props payload.Node) domain.Title {
	aftd := props.Get("aboveTheFoldData")
	main := props.Get("mainColumnData")
	stage := aftd.Get("productionStatus", "currentProductionStage", "id")
	rd := aftd.Get("releaseDate")

	return domain.Title{
		ID:            string(id),
		ReviewAPIPath: "/reviews/" + string(id),
		IMDb:          CanonicalBaseURL + string(id),

		ContentType:      aftd.Get("titleType", "id").StringPtr(),
		ContentRating:    aftd.Get("certificate", "rating").StringOr("N/A"),
		IsSeries:         aftd.Get("titleType", "isSeries").Bool(),
		ProductionStatus: stage.StringPtr(),
		IsReleased:       stage.StringOr("") == "released",

		Title:         aftd.Get("titleText", "text").StringPtr(),
		OriginalTitle: aftd.Get("originalTitleText", "text").StringPtr(),
		Image:         aftd.Get("primaryImage", "url").StringPtr(),
		Images:        images(main),

		Plot:           aftd.Get("plot", "plotText", "plainText").StringOr("N/A"),
		Runtime:        aftd.Get("runtime", "displayableProperty", "value", "plainText").StringOr(""),
		RuntimeSeconds: aftd.Get("runtime", "seconds").IntOr(0),

		Rating: domain.Rating{
			Count: aftd.Get("ratingsSummary", "voteCount").IntOr(0),
			Star:  aftd.Get("ratingsSummary", "aggregateRating").FloatOr(0),
		},
		Award: domain.Award{
			Wins:        main.Get("wins", "total").IntOr(0),
			Nominations: main.Get("nominations", "total").IntOr(0),
		},
		Genre: genres(aftd),

		ReleaseDetailed: domain.ReleaseDetailed{
			Date:  ValidatedDate(rd),
			Day:   rd.Get("day").RawOrNil(),
			Month: rd.Get("month").RawOrNil(),
			Year:  rd.Get("year").RawOrNil(),
			ReleaseLocation: domain.Location{
				Country: main.Get("releaseDate", "country", "text").StringPtr(),
				CCA2:    main.Get("releaseDate", "country", "id").StringPtr(),
			},
			OriginLocations: originLocations(main),
		},
		// releaseYear 是年份的唯一来源。
		Year: aftd.Get("releaseYear", "year").IntPtr(),

		SpokenLanguages:  spokenLanguages(main),
		FilmingLocations: filmingLocations(main),

		Actors:      CreditNames(props, RoleCast),
		ActorsV2:    CreditPeople(props, RoleCast),
		Creators:    CreditNames(props, RoleCreator),
		CreatorsV2:  CreditPeople(props, RoleCreator),
		Directors:   CreditNames(props, RoleDirector),
		DirectorsV2: CreditPeople(props, RoleDirector),
		Writers:     CreditNames(props, RoleWriter),
		WritersV2:   CreditPeople(props, RoleWriter),

		TopCredits: topCredits(aftd),
	}
}

func images(main payload.Node) []string {
	out := []string{}
	for _, e := range main.Get("titleMainImages", "edges").List() {
		if e.Get("__typename").StringOr("") != "ImageEdge" {
			continue
		}
		if u := e.Get("node", "url").StringPtr(); u != nil {
			out = append(out, *u)
		}
	}
	return out
}

func genres(aftd payload.Node) []string {
	out := []string{}
	for _, g := range aftd.Get("genres", "genres").List() {
		if id := g.Get("id").StringPtr(); id != nil {
			out = append(out, *id)
		}
	}
	return out
}

func originLocations(main payload.Node) []domain.Location {
	out := []domain.Location{}
	for _, c := range main.Get("countriesOfOrigin", "countries").List() {
		out = append(out, domain.Location{
			Country: c.Get("text").StringPtr(),
			CCA2:    c.Get("id").StringPtr(),
		})
	}
	return out
}

func spokenLanguages(main payload.Node) []domain.SpokenLanguage {
	out := []domain.SpokenLanguage{}
	for _, l := range main.Get("spokenLanguages", "spokenLanguages").List() {
		out = append(out, domain.SpokenLanguage{
			Language: l.Get("text").StringPtr(),
			ID:       l.Get("id").StringPtr(),
		})
	}
	return out
}

func filmingLocations(main payload.Node) []string {
	out := []string{}
	for _, e := range main.Get("filmingLocations", "edges").List() {
		if s := e.Get("node", "text").StringPtr(); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

func topCredits(aftd payload.Node) []domain.CreditGroup {
	out := []domain.CreditGroup{}
	for _, g := range aftd.Get("principalCredits").List() {
		names := []string{}
		for _, c := range g.Get("credits").List() {
			if n := c.Get("name", "nameText", "text").StringPtr(); n != nil {
				names = append(names, *n)
			}
		}
		out = append(out, domain.CreditGroup{
			ID:      g.Get("category", "id").StringPtr(),
			Name:    g.Get("category", "text").StringPtr(),
			Credits: names,
		})
	}
	return out
}
