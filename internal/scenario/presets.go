package scenario

// QuickScenario は短時間での動作確認用シナリオを返す
func QuickScenario() Config {
	return Config{
		Name:        "quick",
		Description: "Small population for a fast sanity check",
		Systems:     5,
		Attacks:     30,
		Probability: 0.5,
		ReportIndex: 15,
		Seed:        1,
	}
}

// FairScenario は公平なコイン投げのシナリオを返す
func FairScenario() Config {
	return Config{
		Name:        "fair",
		Description: "Unbiased attacks, every attack succeeds half of the time",
		Systems:     50,
		Attacks:     200,
		Probability: 0.5,
		ReportIndex: 100,
		Seed:        1,
	}
}

// HardenedScenario は攻撃がほとんど失敗するシナリオを返す
func HardenedScenario() Config {
	return Config{
		Name:        "hardened",
		Description: "Hardened systems, attacks succeed 20% of the time",
		Systems:     50,
		Attacks:     200,
		Probability: 0.2,
		ReportIndex: 100,
		Seed:        1,
	}
}

// FragileScenario は攻撃がほとんど成功するシナリオを返す
func FragileScenario() Config {
	return Config{
		Name:        "fragile",
		Description: "Fragile systems, attacks succeed 80% of the time",
		Systems:     50,
		Attacks:     200,
		Probability: 0.8,
		ReportIndex: 100,
		Seed:        1,
	}
}

// LargeScenario は大規模な集団のシナリオを返す
func LargeScenario() Config {
	return Config{
		Name:        "large",
		Description: "Large population with long attack sequences",
		Systems:     1000,
		Attacks:     1000,
		Probability: 0.5,
		ReportIndex: 500,
		Seed:        1,
	}
}

var presetOrder = []string{"quick", "fair", "hardened", "fragile", "large"}

var presets = map[string]func() Config{
	"quick":    QuickScenario,
	"fair":     FairScenario,
	"hardened": HardenedScenario,
	"fragile":  FragileScenario,
	"large":    LargeScenario,
}

// GetPreset は名前からプリセットシナリオを取得する
func GetPreset(name string) (Config, bool) {
	if fn, ok := presets[name]; ok {
		return fn(), true
	}
	return Config{}, false
}

// ListPresets は利用可能なプリセット名を返す
func ListPresets() []string {
	names := make([]string, len(presetOrder))
	copy(names, presetOrder)
	return names
}

// PresetInfo はプリセットの名前と説明
type PresetInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Systems     int     `json:"systems"`
	Attacks     int     `json:"attacks"`
	Probability float64 `json:"probability"`
}

// PresetDescriptions はプリセット一覧を説明付きで返す
func PresetDescriptions() []PresetInfo {
	infos := make([]PresetInfo, 0, len(presetOrder))
	for _, name := range presetOrder {
		cfg := presets[name]()
		infos = append(infos, PresetInfo{
			Name:        cfg.Name,
			Description: cfg.Description,
			Systems:     cfg.Systems,
			Attacks:     cfg.Attacks,
			Probability: cfg.Probability,
		})
	}
	return infos
}
