package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/server/middleware"
	"github.com/sendloop/sendloop/internal/whatsapp"
)

// MaxMediaUpload caps header media files at 16 MiB, the Graph API limit for
// template header assets.
const MaxMediaUpload = 16 << 20

func writeMediaError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"success":false,"error":%q}`, msg)
}

// MediaUploadHandler accepts a multipart header-media upload and exchanges it
// for a Graph API media handle. Multipart streaming does not fit the typed
// request model used elsewhere, so this is a plain handler mounted on the
// authenticated router.
func MediaUploadHandler(store DataStore, gateway TemplateGateway, vault TokenVault) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := middleware.CompanyIDFromContext(r.Context())
		if !ok {
			writeMediaError(w, http.StatusUnauthorized, "missing or invalid session")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxMediaUpload)
		if err := r.ParseMultipartForm(MaxMediaUpload); err != nil {
			writeMediaError(w, http.StatusRequestEntityTooLarge, "file exceeds the 16 MiB limit")
			return
		}

		if r.FormValue("messaging_product") != "whatsapp" {
			writeMediaError(w, http.StatusBadRequest, "messaging_product must be whatsapp")
			return
		}

		wabaID := r.FormValue("wabaId")
		if wabaID == "" {
			writeMediaError(w, http.StatusBadRequest, "wabaId is required")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeMediaError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		fileType := header.Header.Get("Content-Type")
		if fileType == "" {
			fileType = "application/octet-stream"
		}

		account, err := store.Wabas().GetByID(r.Context(), companyID, wabaID)
		if errors.Is(err, domain.ErrNotFound) {
			writeMediaError(w, http.StatusNotFound, "WABA account not found")
			return
		}
		if err != nil {
			writeMediaError(w, http.StatusInternalServerError, "failed to load WABA account")
			return
		}

		token, err := vault.Decrypt(account.AccessToken)
		if err != nil {
			log.Error().Err(err).Str("waba_id", account.WabaID).Msg("waba token decrypt failed")
			writeMediaError(w, http.StatusInternalServerError, "failed to access channel credentials")
			return
		}

		handle, err := gateway.UploadMedia(r.Context(), account.WabaID, token, fileType, file)
		if errors.Is(err, whatsapp.ErrUpstream) {
			writeMediaError(w, http.StatusBadGateway, "media upload was rejected upstream")
			return
		}
		if err != nil {
			writeMediaError(w, http.StatusInternalServerError, "failed to upload media")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"success":true,"h":%q,"url":%q}`, handle.H, handle.URL)
	}
}
