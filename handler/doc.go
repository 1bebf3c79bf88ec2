// Package handler renders HTTP responses for the platform's JSON API.
//
// Handlers return a Response instead of writing to the ResponseWriter
// directly; Wrap adapts them to http.HandlerFunc and routes render failures
// to an ErrorHandler:
//
//	func listCourses(r *http.Request) handler.Response {
//		courses, err := load(r.Context())
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(courses)
//	}
//
//	r.Get("/courses", handler.Wrap(listCourses))
//
// Every JSON body has the JSONResponse envelope: data on success, error on
// failure, optional meta. HTTPError values carry the status code and a stable
// machine-readable key, which becomes ErrorDetail.Code.
package handler
