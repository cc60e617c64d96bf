// Package assets writes the images derived from the game data into the staging directory.
//
// Cheap categories (trade goods, religions, estates and custom flags) are rendered eagerly
// while the snapshot is built. Every other category is converted on demand, only when the
// server reports it as missing.
package assets

// Category groups assets of the same kind.
type Category string

// Asset categories.
const (
	Flags               Category = "flags"
	Goods               Category = "goods"
	Religions           Category = "religions"
	Estates             Category = "estates"
	Buildings           Category = "buildings"
	Advisors            Category = "advisors"
	Institutions        Category = "institutions"
	IdeaGroups          Category = "idea_groups"
	Personalities       Category = "personalities"
	LeaderPersonalities Category = "leader_personalities"
	Ideas               Category = "ideas"
	Privileges          Category = "privileges"

	// Provinces and Colors hold the two reference images of the map.
	Provinces Category = "provinces"
	Colors    Category = "colors"
)

// Categories lists every category, in upload order.
var Categories = []Category{
	Provinces, Colors, Flags, Advisors, Institutions, Buildings, Religions, Goods,
	Estates, Privileges, IdeaGroups, Personalities, Ideas, LeaderPersonalities,
}

// manifestKeys are the names used by the server in missing assets manifests.
var manifestKeys = map[string]Category{
	"countries":           Flags,
	"tradeGoods":          Goods,
	"ideaGroups":          IdeaGroups,
	"leaderPersonalities": LeaderPersonalities,
}

// ParseCategory returns the category named key, either by its directory name or by the name
// the server uses in manifests.
func ParseCategory(key string) (Category, bool) {
	if c, ok := manifestKeys[key]; ok {
		return c, true
	}
	for _, c := range Categories {
		if string(c) == key {
			return c, true
		}
	}
	return "", false
}

// Dir returns the staging sub-directory of the category, which is also its folder in the
// uploaded bundle. Ruler personalities, ideas and leader personalities are all modifier icons
// and share the modifiers folder of the server.
func (c Category) Dir() string {
	switch c {
	case Personalities, Ideas, LeaderPersonalities:
		return "modifiers"
	default:
		return string(c)
	}
}

// Eager reports whether the category is rendered while building the snapshot.
func (c Category) Eager() bool {
	switch c {
	case Goods, Religions, Estates, Colors:
		return true
	}
	return false
}

// Reference reports whether the category holds one of the map reference images,
// whose hash is required.
func (c Category) Reference() bool {
	return c == Provinces || c == Colors
}
