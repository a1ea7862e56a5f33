// Package web serves the controller status and, when running a simulation, the simulated
// thermometer endpoint.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/alittlebrighter/bandstat"
	"github.com/alittlebrighter/bandstat/simulation"
	"github.com/alittlebrighter/bandstat/thermometer"
	"github.com/alittlebrighter/bandstat/util"
)

// Status is the body of GET /status.
type Status struct {
	State  bandstat.SystemState `json:"state"`
	Events []*bandstat.Event    `json:"events"`
}

// NewRouter builds the HTTP routes. sim may be nil, in which case /temperature is not served.
func NewRouter(events *util.RingBuffer, sim *simulation.Temperature) *mux.Router {
	r := mux.NewRouter()
	r.Use(CORSFilter)

	r.HandleFunc("/status", StatusHandler(events)).Methods(http.MethodGet, http.MethodOptions)
	if sim != nil {
		r.HandleFunc("/temperature", TemperatureHandler(sim)).Methods(http.MethodGet, http.MethodOptions)
	}

	return r
}

// StatusHandler reports the state reached by the latest cycle and the recent cycle events.
// The control loop owns the Controller, so the state comes from the event log.
func StatusHandler(events *util.RingBuffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &Status{State: bandstat.Idle, Events: events.GetAll()}
		if last := events.GetLast(); last != nil {
			status.State = last.To
		}
		writeJSON(w, status)
	}
}

// TemperatureHandler serves the simulated temperature in the format thermometer.JSONWebService reads.
func TemperatureHandler(sim *simulation.Temperature) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		temp := strconv.FormatFloat(sim.Get(), 'f', -1, 64)
		writeJSON(w, &thermometer.TemperatureReading{Temperature: &temp})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	dat, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("could not marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(dat)
}

func CORSFilter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Add("Access-Control-Allow-Methods", "GET")
		w.Header().Add("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
