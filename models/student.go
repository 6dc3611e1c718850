package models

// Enrollment status values as they appear in the Alunos sheet.
const (
	StudentStatusAtivo   = "ATIVO"
	StudentStatusInativo = "INATIVO"

	// StatusNaoMatriculado is the ledger status label for payers with no
	// roster entry. It never appears in the roster itself.
	StatusNaoMatriculado = "NÃO MATRICULADO"
)

// Student is one row of the Alunos roster. The roster is fetched fresh for
// every reconciliation and never written back.
type Student struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	WhatsApp string `json:"whatsApp"`
	Status   string `json:"status"`
	Livro    string `json:"livro"`
}

func (s Student) IsActive() bool {
	return s.Status == StudentStatusAtivo
}
