package http

import (
	"errors"
	"io"
	"net/http"

	"finboard/internal/log"
	"finboard/internal/services"
)

// handleVoiceTransaction turns an uploaded recording into a transaction.
// Like the rest of the voice flow it answers 200 with success=false for
// anything the user can retry.
func (s *Server) handleVoiceTransaction(w http.ResponseWriter, r *http.Request) {
	if s.deps.Voice == nil {
		writeJSON(w, http.StatusServiceUnavailable, services.VoiceResult{Message: "Voice assistant is not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxAudioBytes)
	file, header, err := r.FormFile("audio")
	if err != nil {
		msg := "No audio file provided"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "Audio file is too large"
		}
		writeJSON(w, http.StatusOK, services.VoiceResult{Message: msg})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeJSON(w, http.StatusOK, services.VoiceResult{Message: "No audio file selected"})
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil || len(audio) == 0 {
		log.FromContext(r.Context()).WithComponent(log.ComponentVoice).WarnContext(r.Context(), "Unreadable audio upload", log.FieldError, err)
		writeJSON(w, http.StatusOK, services.VoiceResult{Message: "No audio file selected"})
		return
	}

	result := s.deps.Voice.ProcessAudio(r.Context(), currentUser(r), audio, header.Header.Get("Content-Type"))
	writeJSON(w, http.StatusOK, result)
}

func handleVoiceSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": services.VoiceSuggestions()})
}
