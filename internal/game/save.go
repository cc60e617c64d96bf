package game

// RebelsTag is the pseudo country owning rebel armies.
const RebelsTag = "REB"

// ProvinceKind classifies provinces of the map.
type ProvinceKind string

// Province kinds.
const (
	Land       ProvinceKind = "land"
	Ocean      ProvinceKind = "ocean"
	Lake       ProvinceKind = "lake"
	Impassable ProvinceKind = "impassable"
)

// Save is a parsed save game.
type Save struct {
	Name      string `json:"name"`
	Date      Date   `json:"date"`
	StartDate Date   `json:"startDate"`

	Game *Game `json:"-"`

	Countries    []Country          `json:"countries"`
	Provinces    []Province         `json:"provinces"`
	Advisors     []Advisor          `json:"advisors"`
	Teams        []Team             `json:"teams"`
	Diplomacy    Diplomacy          `json:"diplomacy"`
	Institutions []InstitutionState `json:"institutions"`
	Wars         []War              `json:"wars"`
	HRE          *HRE               `json:"hre,omitempty"`
	Celestial    *CelestialEmpire   `json:"celestialEmpire,omitempty"`
}

// Country is a country of the save.
type Country struct {
	Tag        string   `json:"tag"`
	Name       string   `json:"name"`
	CustomName string   `json:"customName,omitempty"`
	Observer   bool     `json:"observer,omitempty"`
	Players    []string `json:"players,omitempty"`

	MapColor Color `json:"mapColor"`

	AdmTech int `json:"admTech"`
	DipTech int `json:"dipTech"`
	MilTech int `json:"milTech"`

	Religion         string   `json:"religion,omitempty"`
	PrimaryCulture   string   `json:"primaryCulture,omitempty"`
	AcceptedCultures []string `json:"acceptedCultures,omitempty"`

	GreatPowerRank int     `json:"greatPowerRank,omitempty"`
	Prestige       float64 `json:"prestige"`
	Stability      int     `json:"stability"`
	Treasury       float64 `json:"treasury"`
	Inflation      float64 `json:"inflation"`
	Corruption     float64 `json:"corruption"`
	Manpower       float64 `json:"manpower"`
	MaxManpower    float64 `json:"maxManpower"`
	Sailors        float64 `json:"sailors"`
	MaxSailors     float64 `json:"maxSailors"`

	Rivals         []string           `json:"rivals,omitempty"`
	Estates        []CountryEstate    `json:"estates,omitempty"`
	IdeaGroups     map[string]int     `json:"ideaGroups,omitempty"`
	ActiveAdvisors []int              `json:"activeAdvisors,omitempty"`
	Flags          map[string]Date    `json:"flags,omitempty"`
	Variables      map[string]float64 `json:"variables,omitempty"`

	// History is nil when the save recorded nothing for the country.
	History *CountryHistory `json:"history,omitempty"`

	// Flag is the flag file of the game, CustomFlag the flag of a custom or released nation.
	Flag       *ImageRef `json:"flag,omitempty"`
	CustomFlag *ImageRef `json:"customFlag,omitempty"`
}

// CountryHistory is the dated history of a country.
type CountryHistory struct {
	Events []CountryEvent `json:"events"`
}

// CountryEvent is one dated entry of a country history.
// ChangedTagFrom is set when the country was formed from, or inherited, another tag on that date.
type CountryEvent struct {
	Date           Date   `json:"date"`
	ChangedTagFrom string `json:"changedTagFrom,omitempty"`
}

// CountryEstate is the state of an estate in one country.
type CountryEstate struct {
	Name       string   `json:"name"`
	Loyalty    float64  `json:"loyalty"`
	Influence  float64  `json:"influence"`
	Territory  float64  `json:"territory"`
	Privileges []string `json:"privileges,omitempty"`
}

// Province is a province of the save.
type Province struct {
	ID         int          `json:"id"`
	Name       string       `json:"name"`
	Kind       ProvinceKind `json:"kind"`
	Owner      string       `json:"owner,omitempty"`
	Controller string       `json:"controller,omitempty"`
	Religion   string       `json:"religion,omitempty"`
	Culture    string       `json:"culture,omitempty"`
	TradeGood  string       `json:"tradeGood,omitempty"`
	BaseTax    float64      `json:"baseTax"`
	BaseProd   float64      `json:"baseProduction"`
	BaseMP     float64      `json:"baseManpower"`
	Buildings  []string     `json:"buildings,omitempty"`
	Cores      []string     `json:"cores,omitempty"`

	History []ProvinceEvent `json:"history,omitempty"`
}

// ProvinceEvent is one dated entry of a province history.
// FakeOwner is set when the province changed hands through an inheritance decision.
type ProvinceEvent struct {
	Date      Date   `json:"date"`
	Owner     string `json:"owner,omitempty"`
	FakeOwner string `json:"fakeOwner,omitempty"`
}

// Advisor is an advisor living in the save.
type Advisor struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Skill    int    `json:"skill"`
	Country  string `json:"country,omitempty"`
	Location int    `json:"location,omitempty"`
	Hired    Date   `json:"hired,omitzero"`
}

// Team groups players of a multiplayer game.
type Team struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Relation links two countries, First being the initiator.
type Relation struct {
	First  string  `json:"first"`
	Second string  `json:"second"`
	Start  Date    `json:"start,omitzero"`
	Amount float64 `json:"amount,omitempty"`
}

// Diplomacy holds every relation between countries of the save.
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

// InstitutionState tells whether an institution appeared, and where.
type InstitutionState struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Origin    int    `json:"origin,omitempty"`
}

// War is an active war of the save.
type War struct {
	Name      string   `json:"name"`
	Start     Date     `json:"start"`
	Attackers []string `json:"attackers"`
	Defenders []string `json:"defenders"`
}

// HRE is the state of the Holy Roman Empire.
type HRE struct {
	Emperor    string   `json:"emperor,omitempty"`
	Electors   []string `json:"electors,omitempty"`
	Reforms    []string `json:"reforms,omitempty"`
	Influence  float64  `json:"influence"`
	Dismantled bool     `json:"dismantled,omitempty"`
}

// CelestialEmpire is the state of the Celestial Empire.
type CelestialEmpire struct {
	Emperor    string   `json:"emperor,omitempty"`
	Reforms    []string `json:"reforms,omitempty"`
	Mandate    float64  `json:"mandate"`
	Dismantled bool     `json:"dismantled,omitempty"`
}

// OtherSide returns the countries fighting against tag in the war, or nil if tag is not at war in it.
func (w War) OtherSide(tag string) []string {
	for _, t := range w.Attackers {
		if t == tag {
			return w.Defenders
		}
	}
	for _, t := range w.Defenders {
		if t == tag {
			return w.Attackers
		}
	}
	return nil
}
