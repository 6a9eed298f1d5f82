package handler

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"
)

// CreateToken mints a storefront session token. Only the payment callback
// process on this host may call it, so anything non-loopback is rejected.
func (h *Handler) CreateToken(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		h.writeError(w, http.StatusForbidden, errors.New("token creation is local only"))
		return
	}

	expiryMinutes := 60
	if raw := r.URL.Query().Get("expiry_minutes"); raw != "" {
		expiryMinutes, err = strconv.Atoi(raw)
		if err != nil || expiryMinutes <= 0 {
			h.writeError(w, http.StatusBadRequest, errors.New("expiry_minutes must be a positive integer"))
			return
		}
	}

	token, err := h.sessions.Create(r.Context(), time.Duration(expiryMinutes)*time.Minute)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusCreated, token)
}
