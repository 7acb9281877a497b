package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/kaimono/internal/metrics"
	"github.com/hitoshi/kaimono/internal/middleware"
	"github.com/hitoshi/kaimono/internal/security"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// サービス
	ListService ShoppingListServiceInterface
	Sanitizer   security.NameSanitizerService

	// 運用
	DB              *sql.DB
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	SecurityHeaders → CORS → Recovery → Logging → Identity → RateLimit(General)
//
// /health と /metrics は認証チェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	listHandler := NewListHandler(deps.ListService, deps.Sanitizer, deps.Metrics)
	healthHandler := NewHealthHandler(deps.DB)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Check)

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Identity → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewIdentityMiddleware())
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/shoppingLists", func(r chi.Router) {
			// POST /api/shoppingLists - リスト作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.ListCreateMiddleware()).Post("/", listHandler.CreateList)

			// 一覧（アクティブ / アーカイブ済み）。
			// アクティブ一覧は/activeが正規ルート。ルート直下はその別名。
			r.Get("/", listHandler.ListActive)
			r.Get("/active", listHandler.ListActive)
			r.Get("/archived", listHandler.ListArchived)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", listHandler.GetList)
				r.Put("/", listHandler.UpdateListName)
				r.Delete("/", listHandler.DeleteList)
				r.Put("/archive", listHandler.ArchiveList)
				r.Post("/leave", listHandler.LeaveList)

				// メンバー管理
				r.Post("/members", listHandler.AddMember)
				r.Delete("/members/{memberId}", listHandler.RemoveMember)

				// 品目管理
				r.Post("/items", listHandler.AddItem)
				r.Put("/items/{itemId}/resolve", listHandler.ResolveItem)
				r.Delete("/items/{itemId}", listHandler.RemoveItem)
			})
		})
	})

	return r
}
