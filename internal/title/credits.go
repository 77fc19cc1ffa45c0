package title

import (
	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/payload"
)

// 署名分类（principalCredits[].category.id）。
const (
	RoleCast     = "cast"
	RoleCreator  = "creator"
	RoleDirector = "director"
	RoleWriter   = "writer"
)

// Variant 决定署名的投影方式。
type Variant int

const (
	// VariantSimple 只输出名字，缺名的条目被丢弃。
	VariantSimple Variant = iota
	// VariantRich（对外称 "2"）输出 {id, name}，缺名的条目保留为 {null, null}。
	VariantRich
)

// ParseVariant 把对外的 variant 参数映射为 Variant："2" 为富投影，其余为简单投影。
func ParseVariant(s string) Variant {
	if s == "2" {
		return VariantRich
	}
	return VariantSimple
}

// Credits 按 variant 返回指定分类的署名：VariantSimple 为 []string，VariantRich 为 []domain.Person。
func Credits(props payload.Node, role string, v Variant) any {
	if v == VariantRich {
		return CreditPeople(props, role)
	}
	return CreditNames(props, role)
}

// CreditNames 是 VariantSimple 投影。
func CreditNames(props payload.Node, role string) []string {
	return lookupCredits(props, role, func(c payload.Node) (string, bool) {
		name := c.Get("name", "nameText", "text").StringPtr()
		if name == nil {
			return "", false
		}
		return *name, true
	})
}

// CreditPeople 是 VariantRich 投影。
func CreditPeople(props payload.Node, role string) []domain.Person {
	return lookupCredits(props, role, func(c payload.Node) (domain.Person, bool) {
		name := c.Get("name", "nameText", "text").StringPtr()
		if name == nil {
			return domain.Person{}, true
		}
		return domain.Person{ID: c.Get("name", "id").StringPtr(), Name: name}, true
	})
}

// lookupCredits 是两种投影共享的遍历：取第一个 category.id == role 的分组，逐条投影。
// project 返回 keep=false 时丢弃该条。没有匹配分组时返回空列表（非 nil）。
func lookupCredits[T any](props payload.Node, role string, project func(payload.Node) (T, bool)) []T {
	out := []T{}
	if role == "" {
		return out
	}
	for _, group := range props.Get("aboveTheFoldData", "principalCredits").List() {
		if group.Get("category", "id").StringOr("") != role {
			continue
		}
		for _, c := range group.Get("credits").List() {
			if v, keep := project(c); keep {
				out = append(out, v)
			}
		}
		return out
	}
	return out
}
