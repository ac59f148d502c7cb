// Package form implements the application session: the editable values, the
// errors of the last submit attempt, and the switch between editing and the
// read-only summary of an accepted submission.
//
//	session := form.New(form.WithLogger(logger))
//	_ = session.Change(model.FieldFullName, "Ada Lovelace")
//	errs, ok, err := session.Submit()
package form
