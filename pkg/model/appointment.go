package model

// Appointment is one persisted booking. Rows are append-only: nothing in the
// service updates or deletes them.
type Appointment struct {
	ID          int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement" bson:"_id"`
	Name        string `json:"nome" gorm:"column:nome;type:text;not null" bson:"nome"`
	Phone       string `json:"telefone" gorm:"column:telefone;type:text;not null" bson:"telefone"`
	Vehicle     string `json:"veiculo" gorm:"column:veiculo;type:text;not null" bson:"veiculo"`
	ServiceType string `json:"tipo_servico" gorm:"column:tipo_servico;type:text;not null" bson:"tipo_servico"`
	Description string `json:"descricao" gorm:"column:descricao;type:text" bson:"descricao"`
	Date        string `json:"data" gorm:"column:data;type:text;not null;index:idx_agendamentos_data" bson:"data"`
	Time        string `json:"hora" gorm:"column:hora;type:text;not null" bson:"hora"`
}

func (Appointment) TableName() string {
	return "agendamentos"
}

// AppointmentRequest is the body of POST /agendar. Every field except
// Description is required.
type AppointmentRequest struct {
	Name        string `json:"nome" validate:"required"`
	Phone       string `json:"telefone" validate:"required"`
	Vehicle     string `json:"veiculo" validate:"required"`
	ServiceType string `json:"tipo_servico" validate:"required"`
	Description string `json:"descricao,omitempty"`
	Date        string `json:"data" validate:"required"`
	Time        string `json:"hora" validate:"required"`
}

func (r *AppointmentRequest) ToAppointment() *Appointment {
	return &Appointment{
		Name:        r.Name,
		Phone:       r.Phone,
		Vehicle:     r.Vehicle,
		ServiceType: r.ServiceType,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
	}
}

type BookingConfirmation struct {
	Appointment *Appointment
	Message     string
	WhatsApp    string
}
