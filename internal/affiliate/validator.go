package affiliate

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Validator confere se um link de afiliado responde. Serve só para diagnóstico.
type Validator struct {
	client *http.Client
	log    *zap.Logger
}

// NewValidator cria um validador com timeout de 10 segundos
func NewValidator(log *zap.Logger) *Validator {
	return &Validator{
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Check faz um HEAD seguindo redirecionamentos e retorna true quando o status final é 200
func (v *Validator) Check(ctx context.Context, link string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		v.log.Warn("Link inválido", zap.String("url", link), zap.Error(err))
		return false
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Warn("Erro ao validar link", zap.String("url", link), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
