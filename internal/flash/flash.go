// Package flash provides transient messages surfaced on the next rendered
// page, carried across the redirect in a short-lived cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// CookieName is the cookie holding pending flash messages.
const CookieName = "incontext_flash"

// Message categories.
const (
	CategoryMessage = "message"
	CategoryError   = "error"
)

// Message is a single flash entry.
type Message struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Add appends a message to the pending flash cookie.
func Add(w http.ResponseWriter, r *http.Request, category, message string) {
	messages := read(r)
	messages = append(messages, Message{Category: category, Message: message})
	write(w, messages)
}

// Pop returns all pending messages and clears the flash cookie.
func Pop(w http.ResponseWriter, r *http.Request) []Message {
	messages := read(r)
	if len(messages) > 0 {
		expire(w)
	}
	return messages
}

func read(r *http.Request) []Message {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	data, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil
	}
	return messages
}

func write(w http.ResponseWriter, messages []Message) {
	data, err := json.Marshal(messages)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.URLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func expire(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
