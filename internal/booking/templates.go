package booking

import (
	"bytes"
	"html/template"
)

// change is the data rendered into reschedule emails.
type change struct {
	ReservationID string
	Customer      string
	Restaurant    string
	Guests        int
	Old           Slot
	New           Slot
	Reason        *string
}

type templateName string

const (
	customerTemplate   templateName = "customer"
	restaurantTemplate templateName = "restaurant"
)

var templates = template.Must(template.New(string(customerTemplate)).Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #2c3e50;">Tu reservación ha sido modificada</h2>
  <p>Hola {{.Customer}},</p>
  <p>Te confirmamos que tu reservación ha sido actualizada exitosamente.</p>
  <h3 style="color: #28a745;">Nueva fecha y hora:</h3>
  <ul>
    <li><strong>Fecha:</strong> {{.New.Date}}</li>
    <li><strong>Hora:</strong> {{.New.Time}}</li>
    <li><strong>Restaurante:</strong> {{.Restaurant}}</li>
    <li><strong>Personas:</strong> {{.Guests}}</li>
  </ul>
  <h4 style="color: #856404;">Fecha y hora anterior:</h4>
  <ul>
    <li><strong>Fecha:</strong> {{.Old.Date}}</li>
    <li><strong>Hora:</strong> {{.Old.Time}}</li>
  </ul>
  {{with .Reason}}<p><strong>Motivo del cambio:</strong> {{.}}</p>{{end}}
  <p style="color: #6c757d; font-size: 14px;">Si necesitas hacer cambios adicionales, hazlo con al menos 24 horas de anticipación.</p>
  <p style="color: #999; font-size: 12px;">Este es un correo automático de FoodAI. Por favor no respondas a este mensaje.</p>
</body>
</html>`))

func init() {
	template.Must(templates.New(string(restaurantTemplate)).Parse(`<html>
<body style="font-family: Arial, sans-serif;">
  <h2>Notificación de cambio en reservación</h2>
  <p>Una reservación ha sido modificada en su restaurante.</p>
  <table style="border-collapse: collapse; width: 100%;">
    <tr><td><strong>Cliente:</strong></td><td>{{.Customer}}</td></tr>
    <tr><td><strong>Nueva fecha:</strong></td><td>{{.New.Date}}</td></tr>
    <tr><td><strong>Nueva hora:</strong></td><td>{{.New.Time}}</td></tr>
    <tr><td><strong>Personas:</strong></td><td>{{.Guests}}</td></tr>
    <tr><td><strong>Fecha anterior:</strong></td><td>{{.Old.Date}}</td></tr>
    <tr><td><strong>Hora anterior:</strong></td><td>{{.Old.Time}}</td></tr>
  </table>
  {{with .Reason}}<p><strong>Motivo:</strong> {{.}}</p>{{end}}
  <p style="color: #666; font-size: 14px;">ID de reservación: {{.ReservationID}}</p>
</body>
</html>`))
}

func render(name templateName, c change) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(name), c); err != nil {
		return "", err
	}
	return buf.String(), nil
}
