package localization

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/openews/report-server/pkg/sloger"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var logger *slog.Logger

func init() {
	type Empty struct{}
	pkgParts := strings.Split(reflect.TypeOf(Empty{}).PkgPath(), "/")
	// add package name to app logger
	logger = sloger.With("pkg", pkgParts[len(pkgParts)-1])
}

const (
	KeyLinkedToSupervisor   = "reports.linkedToSupervisor"
	KeyLinkedToOrganization = "reports.linkedToOrganization"
	KeyRestCategory         = "dashboard.rest"
)

type stringEntry struct {
	Key          string            `yaml:"key"`
	Translations map[string]string `yaml:"translations"`
}

type healthRiskEntry struct {
	Id    int               `yaml:"id"`
	Names map[string]string `yaml:"names"`
}

type vaultFile struct {
	Strings     []stringEntry     `yaml:"strings"`
	HealthRisks []healthRiskEntry `yaml:"healthRisks"`
}

// Vault holds the localized UI strings and health risk names, loaded once at
// startup. Lookups never fall back to another language; a missing
// language/id pair resolves to an empty name.
type Vault struct {
	strings     map[string]map[string]string
	healthRisks map[string]map[int]string
	matcher     language.Matcher
	tags        []language.Tag
}

func Load(path string) (*Vault, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read strings file", "path", path, "error", err)
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Vault, error) {
	var f vaultFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("malformed strings file: %w", err)
	}

	v := &Vault{
		strings:     map[string]map[string]string{},
		healthRisks: map[string]map[int]string{},
	}
	seen := map[string]bool{}
	for _, e := range f.Strings {
		for lang, s := range e.Translations {
			if v.strings[lang] == nil {
				v.strings[lang] = map[string]string{}
			}
			v.strings[lang][e.Key] = s
			seen[lang] = true
		}
	}
	for _, e := range f.HealthRisks {
		for lang, name := range e.Names {
			if v.healthRisks[lang] == nil {
				v.healthRisks[lang] = map[int]string{}
			}
			v.healthRisks[lang][e.Id] = name
			seen[lang] = true
		}
	}

	for lang := range seen {
		tag, err := language.Parse(lang)
		if err != nil {
			logger.Warn("skipping unparseable language code", "language", lang)
			continue
		}
		v.tags = append(v.tags, tag)
	}
	if len(v.tags) > 0 {
		v.matcher = language.NewMatcher(v.tags)
	}
	return v, nil
}

// MatchLanguage resolves the closest supported language code for a requested
// one. An unrecognized request falls back to the first loaded language.
func (v *Vault) MatchLanguage(requested string) string {
	if v.matcher == nil {
		return requested
	}
	tag, err := language.Parse(requested)
	if err != nil {
		tag = language.Und
	}
	_, idx, _ := v.matcher.Match(tag)
	base, _ := v.tags[idx].Base()
	return base.String()
}

// Get returns the localized string for key, substituting {0}, {1}... with
// args. Missing keys resolve to empty.
func (v *Vault) Get(lang, key string, args ...string) string {
	s := v.strings[lang][key]
	for i, a := range args {
		s = strings.ReplaceAll(s, fmt.Sprintf("{%d}", i), a)
	}
	return s
}

// HealthRiskName returns the localized name for a health risk, or false when
// no name exists for that language/id pair. No cross-language fallback.
func (v *Vault) HealthRiskName(lang string, id int) (string, bool) {
	name, ok := v.healthRisks[lang][id]
	return name, ok
}
