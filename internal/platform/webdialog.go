package platform

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/domain/entity"
	"github.com/bivex/webpay-client/internal/infrastructure/logging"
)

// statusFromPostback keeps an absent status absent so the orchestrator
// falls back to polling
func statusFromPostback(s string) entity.TransactionStatus {
	if s == "" {
		return ""
	}
	return entity.TransactionStatus(s)
}

// WebDialog is the payment provider for the generic web environment. It
// serves a one-shot postback endpoint on the loopback interface, logs the
// dialog URL for the hosting shell to open, and delivers whichever outcome
// the dialog posts back.
type WebDialog struct {
	dialogURL  string
	listenAddr string
	logger     *zap.Logger

	// OnOpen, when set, receives the dialog and postback URLs once the
	// listener is up. The hosting shell uses it to open the dialog.
	OnOpen func(dialogURL, postbackURL string)
}

// NewWebDialog creates a web payment dialog provider. dialogURL is the
// payment provider's dialog page; listenAddr defaults to an ephemeral
// loopback port.
func NewWebDialog(dialogURL, listenAddr string, logger *zap.Logger) *WebDialog {
	if listenAddr == "" {
		listenAddr = "127.0.0.1:0"
	}
	return &WebDialog{
		dialogURL:  dialogURL,
		listenAddr: listenAddr,
		logger:     logger,
	}
}

type dialogPostback struct {
	Status    string `json:"status"`
	Receipt   string `json:"receipt"`
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// Pay starts the postback listener and hands the dialog URL to the caller
// via the log. The first postback wins; the listener then shuts down.
func (d *WebDialog) Pay(ctx context.Context, token string, onResult func(Result), onError func(code, message string)) {
	ln, err := net.Listen("tcp", d.listenAddr)
	if err != nil {
		onError("", fmt.Sprintf("failed to open payment postback listener: %v", err))
		return
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestMiddleware(d.logger))

	srv := &http.Server{Handler: router}
	var once sync.Once
	done := make(chan struct{})

	deliver := func(fn func()) {
		once.Do(func() {
			fn()
			close(done)
		})
	}

	router.POST("/webpay/result", func(c *gin.Context) {
		var pb dialogPostback
		if err := c.ShouldBindJSON(&pb); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed postback"})
			return
		}
		c.Status(http.StatusNoContent)

		if pb.ErrorCode != "" {
			deliver(func() { onError(pb.ErrorCode, pb.Message) })
			return
		}
		deliver(func() {
			onResult(Result{
				Status:  statusFromPostback(pb.Status),
				Receipt: pb.Receipt,
			})
		})
	})

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			deliver(func() { onError("", fmt.Sprintf("payment postback listener failed: %v", err)) })
		}
	}()

	postback := fmt.Sprintf("http://%s/webpay/result", ln.Addr().String())
	dialog := d.dialogURL + "?req=" + url.QueryEscape(token)
	d.logger.Info("Waiting for payment dialog result",
		zap.String("dialog_url", dialog),
		zap.String("postback_url", postback),
	)
	if d.OnOpen != nil {
		d.OnOpen(dialog, postback)
	}

	go func() {
		select {
		case <-done:
		case <-ctx.Done():
			deliver(func() { onError("", "payment dialog abandoned") })
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
