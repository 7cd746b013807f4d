package httpgateway

import "net/http"

// cors applies the gateway's CORS policy to the /q routes only: allow any
// origin, the headers {X-Seafowl-Query, Authorization, Content-Type}, and
// methods {GET, POST}. Deliberately not applied to /upload (spec.md §4.6:
// "historically isolated; preserved" - spec.md §9 Open Question #4).
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "X-Seafowl-Query, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
