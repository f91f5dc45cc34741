package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"yatube/internal/auth"
	"yatube/internal/serializers"
	"yatube/internal/store"
)

var errBadLogin = serializers.ValidationError{
	"non_field_errors": {"Unable to log in with provided credentials."},
}

func (api *API) Register(w http.ResponseWriter, r *http.Request) {
	reg, err := serializers.DecodeRegistration(r.Body)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	user, err := api.store.CreateUser(r.Context(), reg.Username, reg.Email, reg.Password)
	if errors.Is(err, store.ErrDuplicate) {
		err = serializers.ValidationError{"username": {"A user with that username already exists."}}
	}
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.logger.WithField("username", user.Username).Info("User registered successfully")
	writeJSON(w, http.StatusCreated, serializers.NewUser(user))
}

func (api *API) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	if err := auth.Authorize(id, auth.ActionReadOwn, nil); err != nil {
		api.writeError(w, r, err)
		return
	}
	user, err := api.store.UserByID(r.Context(), id.UserID)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializers.NewUser(user))
}

func (api *API) TokenLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := serializers.DecodeCredentials(r.Body)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	user, err := api.store.CheckPassword(r.Context(), creds.Username, creds.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		api.logger.WithField("username", creds.Username).Warn("Invalid login credentials")
		err = errBadLogin
	}
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	key, err := api.store.TokenFor(r.Context(), user.ID)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"auth_token": key})
}

func (api *API) TokenLogout(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	if err := auth.Authorize(id, auth.ActionReadOwn, nil); err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.store.DeleteToken(r.Context(), id.UserID); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) SessionLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := serializers.DecodeCredentials(r.Body)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	user, err := api.store.CheckPassword(r.Context(), creds.Username, creds.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		api.logger.WithField("username", creds.Username).Warn("Invalid login credentials")
		err = errBadLogin
	}
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.auth.Login(w, r, user.ID); err != nil {
		api.writeError(w, r, err)
		return
	}
	api.logger.WithField("username", user.Username).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, serializers.NewUser(user))
}

func (api *API) SessionLogout(w http.ResponseWriter, r *http.Request) {
	if err := api.auth.Logout(w, r); err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) JWTCreate(w http.ResponseWriter, r *http.Request) {
	creds, err := serializers.DecodeCredentials(r.Body)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	user, err := api.store.CheckPassword(r.Context(), creds.Username, creds.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		api.logger.WithField("username", creds.Username).Warn("Invalid login credentials")
		err = &auth.AuthenticationFailedError{Detail: "No active account found with the given credentials"}
	}
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	pair, err := api.auth.JWT().Issue(user.ID)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.logger.WithFields(logrus.Fields{"username": user.Username}).Info("JWT issued")
	writeJSON(w, http.StatusOK, pair)
}

func (api *API) JWTRefresh(w http.ResponseWriter, r *http.Request) {
	refresh, err := serializers.DecodeToken(r.Body, "refresh")
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	access, err := api.auth.JWT().Refresh(refresh)
	if err != nil {
		api.writeError(w, r, &auth.AuthenticationFailedError{Detail: "Token is invalid or expired"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (api *API) JWTVerify(w http.ResponseWriter, r *http.Request) {
	token, err := serializers.DecodeToken(r.Body, "token")
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := api.auth.JWT().Verify(token); err != nil {
		api.writeError(w, r, &auth.AuthenticationFailedError{Detail: "Token is invalid or expired"})
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
