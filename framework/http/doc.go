// Package http provides Laravel-style JSON request and response helpers.
//
//	api.Post("/models/{model}", func(w http.ResponseWriter, r *http.Request) {
//	    req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
//
//	    var data map[string]any
//	    if err := req.Bind(&data); err != nil {
//	        res.Error(http.StatusBadRequest, err.Error())
//	        return
//	    }
//	    res.Created(data)
//	})
//
// Error bodies follow Laravel: {"message": "..."} and, for 422,
// {"errors": {"field": ["msg"]}}.
package http
