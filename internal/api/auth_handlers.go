package api

import (
	"net/http"

	"github.com/khrees2412/jobseeker/internal/auth"
)

func (rt *Router) register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decode(r, &in); err != nil {
		rt.respondError(w, r, err)
		return
	}

	session, err := rt.auth.Register(r.Context(), in)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "User registered successfully",
		"token":   session.Token,
		"user":    session.User,
	})
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decode(r, &in); err != nil {
		rt.respondError(w, r, err)
		return
	}

	session, err := rt.auth.Login(r.Context(), in)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Login successful",
		"token":   session.Token,
		"user":    session.User,
	})
}

func (rt *Router) me(w http.ResponseWriter, r *http.Request) {
	user, err := rt.auth.Me(r.Context(), userID(r))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "user": user})
}

func (rt *Router) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in auth.ProfileInput
	if err := decode(r, &in); err != nil {
		rt.respondError(w, r, err)
		return
	}

	user, err := rt.auth.UpdateProfile(r.Context(), userID(r), in)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}
