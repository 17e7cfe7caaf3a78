package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type TraitCategory string

const (
	CategoryMoral      TraitCategory = "moral"
	CategoryEmotional  TraitCategory = "emotional"
	CategoryCapability TraitCategory = "capability"
	CategoryReputation TraitCategory = "reputation"
)

func (c TraitCategory) Valid() bool {
	switch c {
	case CategoryMoral, CategoryEmotional, CategoryCapability, CategoryReputation:
		return true
	}
	return false
}

// Catalog is the reference list of traits an entity can acquire. It is read
// once at startup and never mutated afterwards.
type Catalog struct {
	Version int        `yaml:"version"`
	Traits  []TraitDef `yaml:"traits"`

	index map[string]*TraitDef
}

type TraitDef struct {
	Name        string        `yaml:"name"`
	Category    TraitCategory `yaml:"category"`
	Description string        `yaml:"description"`
}

var defaultTraits = []TraitDef{
	{Name: "honorable", Category: CategoryMoral, Description: "Keeps their word even at a cost"},
	{Name: "ruthless", Category: CategoryMoral, Description: "Willing to harm others to reach a goal"},
	{Name: "merciful", Category: CategoryMoral, Description: "Spares defeated foes"},
	{Name: "treacherous", Category: CategoryMoral, Description: "Has betrayed an ally"},
	{Name: "generous", Category: CategoryMoral, Description: "Gives freely to those in need"},
	{Name: "vengeful", Category: CategoryEmotional, Description: "Holds grudges and seeks retribution"},
	{Name: "traumatized", Category: CategoryEmotional, Description: "Carries lasting scars from a past event"},
	{Name: "hopeful", Category: CategoryEmotional, Description: "Believes things will get better"},
	{Name: "paranoid", Category: CategoryEmotional, Description: "Suspects hidden threats everywhere"},
	{Name: "grieving", Category: CategoryEmotional, Description: "Mourning a recent loss"},
	{Name: "battle_hardened", Category: CategoryCapability, Description: "Survived many fights"},
	{Name: "silver_tongued", Category: CategoryCapability, Description: "Persuasive in conversation"},
	{Name: "scholarly", Category: CategoryCapability, Description: "Deeply learned"},
	{Name: "stealthy", Category: CategoryCapability, Description: "Moves unseen"},
	{Name: "wounded", Category: CategoryCapability, Description: "Weakened by an injury"},
	{Name: "notorious", Category: CategoryReputation, Description: "Widely known for misdeeds"},
	{Name: "renowned", Category: CategoryReputation, Description: "Widely known for great deeds"},
	{Name: "trusted", Category: CategoryReputation, Description: "Known as reliable"},
	{Name: "outcast", Category: CategoryReputation, Description: "Shunned by their community"},
	{Name: "wanted", Category: CategoryReputation, Description: "Hunted by the authorities"},
}

// DefaultCatalog returns the built-in trait catalog.
func DefaultCatalog() *Catalog {
	catalog := &Catalog{Version: 1, Traits: append([]TraitDef(nil), defaultTraits...)}
	catalog.buildIndex()
	return catalog
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	if err := validateCatalog(&catalog); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	catalog.buildIndex()
	return &catalog, nil
}

// LoadCatalogOrDefault loads the catalog named by the project config, or the
// built-in one when none is configured.
func LoadCatalogOrDefault(cfg *ProjectConfig) (*Catalog, error) {
	if cfg == nil || strings.TrimSpace(cfg.Catalog) == "" {
		return DefaultCatalog(), nil
	}
	return LoadCatalog(cfg.Catalog)
}

func validateCatalog(c *Catalog) error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported version: %d", c.Version)
	}
	if len(c.Traits) == 0 {
		return fmt.Errorf("at least one trait is required")
	}

	names := make(map[string]struct{})
	for i, trait := range c.Traits {
		if strings.TrimSpace(trait.Name) == "" {
			return fmt.Errorf("trait %d name is required", i)
		}
		key := strings.ToLower(trait.Name)
		if _, exists := names[key]; exists {
			return fmt.Errorf("duplicate trait name: %s", trait.Name)
		}
		names[key] = struct{}{}
		if !trait.Category.Valid() {
			return fmt.Errorf("trait %s has unknown category: %s", trait.Name, trait.Category)
		}
	}

	return nil
}

func (c *Catalog) buildIndex() {
	c.index = make(map[string]*TraitDef, len(c.Traits))
	for i := range c.Traits {
		trait := &c.Traits[i]
		c.index[strings.ToLower(trait.Name)] = trait
	}
}

func (c *Catalog) TraitByName(name string) (*TraitDef, bool) {
	if c == nil {
		return nil, false
	}
	trait, ok := c.index[strings.ToLower(name)]
	return trait, ok
}

func (c *Catalog) IsKnownTrait(name string) bool {
	_, ok := c.TraitByName(name)
	return ok
}

// Category returns the trait's category, or "" when the trait is not
// catalogued.
func (c *Catalog) Category(name string) TraitCategory {
	trait, ok := c.TraitByName(name)
	if !ok {
		return ""
	}
	return trait.Category
}

func (c *Catalog) ByCategory(category TraitCategory) []TraitDef {
	if c == nil {
		return nil
	}
	var traits []TraitDef
	for _, trait := range c.Traits {
		if trait.Category == category {
			traits = append(traits, trait)
		}
	}
	return traits
}

// Marshal renders the catalog as YAML, used by `init` to scaffold traits.yaml.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(struct {
		Version int        `yaml:"version"`
		Traits  []TraitDef `yaml:"traits"`
	}{Version: c.Version, Traits: c.Traits})
}
