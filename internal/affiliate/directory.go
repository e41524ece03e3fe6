package affiliate

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed stores.yaml
var defaultStores []byte

// StoreInfo descreve uma loja parceira do diretório
type StoreInfo struct {
	Name           string  `yaml:"name"`
	Website        string  `yaml:"website"`
	Network        string  `yaml:"network"`
	Program        string  `yaml:"program"`
	CommissionRate float64 `yaml:"commission_rate"`
}

// AffiliateNetwork devolve a rede da loja. ParseDirectory garante que a rede
// explícita é a mesma detectada pelo nome.
func (s StoreInfo) AffiliateNetwork() Network {
	if s.Network == "" {
		return DetectNetwork(s.Name)
	}
	return ParseNetwork(s.Network)
}

type directoryFile struct {
	Stores []StoreInfo `yaml:"stores"`
}

// Directory é a lista somente leitura de lojas suportadas
type Directory struct {
	stores []StoreInfo
	byName map[string]StoreInfo
}

// LoadDirectory lê o diretório de lojas do arquivo informado ou, com
// caminho vazio, do diretório embutido.
func LoadDirectory(path string) (*Directory, error) {
	data := defaultStores
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("lendo diretório de lojas %s: %w", path, err)
		}
		data = b
	}
	return ParseDirectory(data)
}

// ParseDirectory interpreta o YAML do diretório de lojas
func ParseDirectory(data []byte) (*Directory, error) {
	var f directoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("interpretando diretório de lojas: %w", err)
	}
	if len(f.Stores) == 0 {
		return nil, fmt.Errorf("diretório de lojas vazio")
	}

	d := &Directory{byName: make(map[string]StoreInfo, len(f.Stores))}
	for i, s := range f.Stores {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return nil, fmt.Errorf("loja %d: nome é obrigatório", i)
		}
		// o link é gerado pela rede detectada no nome; a rede do arquivo só confirma
		if s.Network != "" {
			if declared, detected := ParseNetwork(s.Network), DetectNetwork(s.Name); declared != detected {
				return nil, fmt.Errorf("loja %q: rede %q não corresponde à detectada pelo nome (%s)", s.Name, s.Network, detected)
			}
		}
		key := strings.ToLower(s.Name)
		if _, dup := d.byName[key]; dup {
			return nil, fmt.Errorf("loja %q duplicada", s.Name)
		}
		d.byName[key] = s
		d.stores = append(d.stores, s)
	}
	return d, nil
}

// Lookup busca uma loja pelo nome, sem diferenciar maiúsculas
func (d *Directory) Lookup(name string) (StoreInfo, bool) {
	s, ok := d.byName[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Stores devolve as lojas na ordem do arquivo
func (d *Directory) Stores() []StoreInfo {
	out := make([]StoreInfo, len(d.stores))
	copy(out, d.stores)
	return out
}
