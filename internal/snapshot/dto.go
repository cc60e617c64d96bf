package snapshot

import "github.com/osallek/osa-extractor/internal/game"

// Snapshot is the transferable projection of one save, sent to the server.
type Snapshot struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Date          game.Date `json:"date"`
	ProvinceImage string    `json:"provinceImage"`
	ColorsImage   string    `json:"colorsImage"`
	NbProvinces   int       `json:"nbProvinces"`

	Teams               []Team           `json:"teams,omitempty"`
	Provinces           []Province       `json:"provinces"`
	OceansProvinces     []SimpleProvince `json:"oceansProvinces"`
	LakesProvinces      []SimpleProvince `json:"lakesProvinces"`
	ImpassableProvinces []SimpleProvince `json:"impassableProvinces"`
	Countries           []Country        `json:"countries"`
	Advisors            []Advisor        `json:"advisors"`
	Cultures            []Culture        `json:"cultures"`
	Religions           []Religion       `json:"religions"`
	HRE                 *HRE             `json:"hre,omitempty"`
	CelestialEmpire     *CelestialEmpire `json:"celestialEmpire,omitempty"`
	Institutions        []Institution    `json:"institutions"`
	Diplomacy           Diplomacy        `json:"diplomacy"`
	Wars                []War            `json:"wars,omitempty"`
	Buildings           []NamedImage     `json:"buildings"`
	AdvisorTypes        []NamedImage     `json:"advisorTypes"`
	TradeGoods          []TradeGood      `json:"tradeGoods"`
	Estates             []NamedImage     `json:"estates"`
	Privileges          []NamedImage     `json:"privileges"`
	IdeaGroups          []IdeaGroup      `json:"ideaGroups"`
	Personalities       []NamedImage     `json:"personalities"`
	LeaderPersonalities []NamedImage     `json:"leaderPersonalities"`
}

// NamedImage is a localized game object with a picture, Image being its content hash.
type NamedImage struct {
	Name      string `json:"name"`
	Localized string `json:"localized,omitempty"`
	Image     string `json:"image,omitempty"`
}

// TradeGood is a projected trade good.
type TradeGood struct {
	NamedImage
	Price float64    `json:"price"`
	Color game.Color `json:"color"`
}

// IdeaGroup is a projected idea group with its ideas.
type IdeaGroup struct {
	NamedImage
	Category string       `json:"category,omitempty"`
	Ideas    []NamedImage `json:"ideas,omitempty"`
}

// Culture is a projected culture. Color is derived from the name.
type Culture struct {
	Name      string     `json:"name"`
	Group     string     `json:"group"`
	Localized string     `json:"localized,omitempty"`
	Color     game.Color `json:"color"`
}

// Religion is a projected religion.
type Religion struct {
	NamedImage
	Group string     `json:"group"`
	Color game.Color `json:"color"`
}

// Team is a projected multiplayer team.
type Team struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// SimpleProvince is a province without owner: ocean, lake or wasteland.
type SimpleProvince struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Owner is one entry of a province ownership timeline.
type Owner struct {
	Date game.Date `json:"date"`
	Tag  string    `json:"tag"`
}

// Province is a projected land province.
type Province struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Owner          string   `json:"owner,omitempty"`
	Controller     string   `json:"controller,omitempty"`
	Religion       string   `json:"religion,omitempty"`
	Culture        string   `json:"culture,omitempty"`
	TradeGood      string   `json:"tradeGood,omitempty"`
	BaseTax        float64  `json:"baseTax"`
	BaseProduction float64  `json:"baseProduction"`
	BaseManpower   float64  `json:"baseManpower"`
	Buildings      []string `json:"buildings,omitempty"`
	Cores          []string `json:"cores,omitempty"`

	// Owners is the ownership timeline, dates strictly increasing.
	Owners []Owner `json:"owners,omitempty"`

	history []game.ProvinceEvent
}

// CountryEstate is the state of an estate in a projected country.
type CountryEstate struct {
	Name       string   `json:"name"`
	Loyalty    float64  `json:"loyalty"`
	Influence  float64  `json:"influence"`
	Territory  float64  `json:"territory"`
	Privileges []string `json:"privileges,omitempty"`
}

// HistoryEvent is a projected country history entry.
type HistoryEvent struct {
	Date           game.Date `json:"date"`
	ChangedTagFrom string    `json:"changedTagFrom,omitempty"`
}

// Country is a projected country. Relations are flattened from the diplomacy of the save.
type Country struct {
	Tag            string               `json:"tag"`
	Name           string               `json:"name"`
	CustomName     string               `json:"customName,omitempty"`
	Players        []string             `json:"players,omitempty"`
	GreatPowerRank int                  `json:"greatPowerRank,omitempty"`
	Image          string               `json:"image,omitempty"`
	Color          game.Color           `json:"color"`
	Flags          map[string]game.Date `json:"flags,omitempty"`
	Variables      map[string]float64   `json:"variables,omitempty"`

	AdmTech int `json:"admTech"`
	DipTech int `json:"dipTech"`
	MilTech int `json:"milTech"`

	Religion         string   `json:"religion,omitempty"`
	PrimaryCulture   string   `json:"primaryCulture,omitempty"`
	AcceptedCultures []string `json:"acceptedCultures,omitempty"`

	Prestige    float64 `json:"prestige"`
	Stability   int     `json:"stability"`
	Treasury    float64 `json:"treasury"`
	Inflation   float64 `json:"inflation"`
	Corruption  float64 `json:"corruption"`
	Manpower    int     `json:"manpower"`
	MaxManpower int     `json:"maxManpower"`
	Sailors     int     `json:"sailors"`
	MaxSailors  int     `json:"maxSailors"`

	Estates    []CountryEstate `json:"estates,omitempty"`
	IdeaGroups map[string]int  `json:"ideaGroups,omitempty"`
	Advisors   []int           `json:"advisors,omitempty"`
	Rivals     []string        `json:"rivals,omitempty"`
	History    []HistoryEvent  `json:"history,omitempty"`

	Alliances             []string           `json:"alliances,omitempty"`
	Guarantees            []string           `json:"guarantees,omitempty"`
	GuaranteedBy          []string           `json:"guaranteedBy,omitempty"`
	RoyalMarriages        []string           `json:"royalMarriages,omitempty"`
	Subsidies             map[string]float64 `json:"subsidies,omitempty"`
	SubsidiesBy           map[string]float64 `json:"subsidiesBy,omitempty"`
	KnowledgeSharing      string             `json:"knowledgeSharing,omitempty"`
	KnowledgeSharingBy    string             `json:"knowledgeSharingBy,omitempty"`
	SupportIndependence   []string           `json:"supportIndependence,omitempty"`
	SupportIndependenceBy []string           `json:"supportIndependenceBy,omitempty"`
	TransferTradePowers   []string           `json:"transferTradePowers,omitempty"`
	TransferTradePowersBy []string           `json:"transferTradePowersBy,omitempty"`
	WarReparations        []string           `json:"warReparations,omitempty"`
	WarReparationsBy      string             `json:"warReparationsBy,omitempty"`
	Warnings              []string           `json:"warnings,omitempty"`
	WarningsBy            []string           `json:"warningsBy,omitempty"`
	AtWarWith             []string           `json:"atWarWith,omitempty"`
}

// Advisor is a projected advisor.
type Advisor struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Skill    int       `json:"skill"`
	Country  string    `json:"country,omitempty"`
	Location int       `json:"location,omitempty"`
	Hired    game.Date `json:"hired,omitzero"`
}

// Institution is a projected available institution. Origin is 0 when unknown.
type Institution struct {
	NamedImage
	Origin int `json:"origin"`
}

// Relation is a projected relation between two countries.
type Relation struct {
	First     string    `json:"first"`
	Second    string    `json:"second"`
	StartDate game.Date `json:"startDate,omitzero"`
	Amount    float64   `json:"amount,omitempty"`
}

// Diplomacy holds every projected relation.
type Diplomacy struct {
	Alliances           []Relation `json:"alliances,omitempty"`
	Guarantees          []Relation `json:"guarantees,omitempty"`
	RoyalMarriages      []Relation `json:"royalMarriages,omitempty"`
	Subsidies           []Relation `json:"subsidies,omitempty"`
	KnowledgeSharing    []Relation `json:"knowledgeSharing,omitempty"`
	SupportIndependence []Relation `json:"supportIndependence,omitempty"`
	TransferTradePowers []Relation `json:"transferTradePowers,omitempty"`
	WarReparations      []Relation `json:"warReparations,omitempty"`
	Warnings            []Relation `json:"warnings,omitempty"`
	Dependencies        []Relation `json:"dependencies,omitempty"`
}

// War is a projected active war.
type War struct {
	Name      string    `json:"name"`
	StartDate game.Date `json:"startDate"`
	Attackers []string  `json:"attackers"`
	Defenders []string  `json:"defenders"`
}

// HRE is the projected state of the Holy Roman Empire.
type HRE struct {
	Emperor    string   `json:"emperor,omitempty"`
	Electors   []string `json:"electors,omitempty"`
	Reforms    []string `json:"reforms,omitempty"`
	Influence  float64  `json:"influence"`
	Dismantled bool     `json:"dismantled"`
}

// CelestialEmpire is the projected state of the Celestial Empire.
type CelestialEmpire struct {
	Emperor    string   `json:"emperor,omitempty"`
	Reforms    []string `json:"reforms,omitempty"`
	Mandate    float64  `json:"mandate"`
	Dismantled bool     `json:"dismantled"`
}
