package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bot-afiliados/internal/catalog"
	"bot-afiliados/internal/models"
)

// splitCommand separa o comando (sem @nome_do_bot) dos argumentos
func splitCommand(text string) (string, []string) {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil
	}

	command := strings.ToLower(parts[0])
	// Remover @botname se presente
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}
	return command, parts[1:]
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("ID não informado")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("ID inválido: %s", args[0])
	}
	return id, nil
}

// parseAmount aceita 1299.99, 1299,99, $1,299.99 e R$ 1.299,99
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	s = strings.TrimSpace(s)

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot > comma:
		s = strings.ReplaceAll(s, ",", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("valor inválido: %q", s)
	}
	return v, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sim", "s", "yes", "true", "1", "on":
		return true, nil
	case "nao", "não", "n", "no", "false", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("valor inválido: %q (use sim ou não)", s)
}

var productKeys = map[string]string{
	"titulo":      "title",
	"título":      "title",
	"title":       "title",
	"nome":        "title",
	"descricao":   "description",
	"descrição":   "description",
	"description": "description",
	"preco":       "price",
	"preço":       "price",
	"price":       "price",
	"original":    "original",
	"de":          "original",
	"url":         "url",
	"link":        "url",
	"categoria":   "category",
	"category":    "category",
	"loja":        "store",
	"store":       "store",
	"imagem":      "image",
	"image":       "image",
	"nota":        "rating",
	"rating":      "rating",
	"avaliacoes":  "reviews",
	"avaliações":  "reviews",
	"reviews":     "reviews",
	"oferta":      "deal",
	"destaque":    "featured",
}

// parseAddProduct lê o texto de /addproduct, uma linha "chave: valor" por campo
func parseAddProduct(text string) (catalog.ProductInput, error) {
	var in catalog.ProductInput

	lines := strings.Split(text, "\n")
	// a primeira linha é o comando; algo depois dele conta como a primeira linha de dados
	if first := strings.Fields(lines[0]); len(first) > 1 {
		lines[0] = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[0]), first[0]))
	} else {
		lines = lines[1:]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx <= 0 {
			return in, fmt.Errorf("linha sem \"chave: valor\": %q", line)
		}
		key, ok := productKeys[strings.ToLower(strings.TrimSpace(line[:idx]))]
		if !ok {
			return in, fmt.Errorf("campo desconhecido: %q", line[:idx])
		}
		value := strings.TrimSpace(line[idx+1:])

		var err error
		switch key {
		case "title":
			in.Title = value
		case "description":
			in.Description = value
		case "price":
			in.Price, err = parseAmount(value)
		case "original":
			var v float64
			if v, err = parseAmount(value); err == nil {
				in.OriginalPrice = &v
			}
		case "url":
			in.ProductURL = value
		case "category":
			in.Category = strings.ToLower(value)
		case "store":
			in.Store = value
		case "image":
			in.ImageURL = value
		case "rating":
			var v float64
			if v, err = parseAmount(value); err == nil {
				if v > 5 {
					err = fmt.Errorf("nota deve ficar entre 0 e 5")
				}
				in.Rating = &v
			}
		case "reviews":
			in.ReviewCount, err = strconv.Atoi(value)
		case "deal":
			in.IsDailyDeal, err = parseBool(value)
		case "featured":
			in.IsFeatured, err = parseBool(value)
		}
		if err != nil {
			return in, fmt.Errorf("%s: %w", key, err)
		}
	}

	if in.Title == "" || in.ProductURL == "" || in.Price == 0 || in.Category == "" || in.Store == "" {
		return in, errors.New("campos obrigatórios: titulo, preco, url, categoria e loja")
	}
	return in, nil
}

// preferences é uma alteração parcial dos filtros do usuário
type preferences struct {
	maxPrice      *float64
	minDiscount   *float64
	categories    []string
	setMax        bool
	setDiscount   bool
	setCategories bool
}

// parsePreferences lê argumentos como "max=100 desconto=20 categorias=beauty,books".
// "limpar" remove todos os filtros e "-" remove um filtro específico.
func parsePreferences(args []string) (preferences, error) {
	var p preferences
	if len(args) == 1 && strings.EqualFold(args[0], "limpar") {
		return preferences{setMax: true, setDiscount: true, setCategories: true}, nil
	}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return p, fmt.Errorf("use chave=valor: %q", arg)
		}
		key = strings.ToLower(key)
		clear := value == "-" || value == ""

		switch key {
		case "max", "preco", "preço":
			p.setMax = true
			if clear {
				continue
			}
			v, err := parseAmount(value)
			if err != nil || v <= 0 {
				return p, fmt.Errorf("preço máximo inválido: %q", value)
			}
			p.maxPrice = &v
		case "desconto", "min_desconto":
			p.setDiscount = true
			if clear {
				continue
			}
			v, err := parseAmount(value)
			if err != nil || v > 100 {
				return p, fmt.Errorf("desconto mínimo inválido: %q", value)
			}
			p.minDiscount = &v
		case "categorias", "categoria":
			p.setCategories = true
			if clear {
				continue
			}
			p.categories = models.NormalizeCategories(strings.Split(value, ","))
		default:
			return p, fmt.Errorf("filtro desconhecido: %q", key)
		}
	}
	return p, nil
}

// apply devolve os filtros do usuário com a alteração aplicada
func (p preferences) apply(u models.User) (maxPrice, minDiscount *float64, categories []string) {
	maxPrice, minDiscount, categories = u.MaxPriceFilter, u.MinDiscountFilter, u.PreferredCategories
	if p.setMax {
		maxPrice = p.maxPrice
	}
	if p.setDiscount {
		minDiscount = p.minDiscount
	}
	if p.setCategories {
		categories = p.categories
	}
	return maxPrice, minDiscount, categories
}
