// internal/models/document.go
package models

// DocumentType keys a document slot.
type DocumentType string

const (
	DocTranscript             DocumentType = "transcript"
	DocNationalIDCard         DocumentType = "nationalIdCard"
	DocProofOfResidence       DocumentType = "proofOfResidence"
	DocLetterOfRecommendation DocumentType = "letterOfRecommendation"
	DocProofOfBankAccount     DocumentType = "proofOfBankAccount"
	DocCoverLetter            DocumentType = "coverLetter"
	DocPayslip                DocumentType = "payslip"
)

var (
	// MandatoryDocuments must all be uploaded before submission.
	MandatoryDocuments = []DocumentType{DocTranscript, DocNationalIDCard, DocProofOfResidence, DocProofOfBankAccount}

	OptionalDocuments = []DocumentType{DocLetterOfRecommendation, DocCoverLetter, DocPayslip}

	// DocumentTypes is every slot in submission order.
	DocumentTypes = []DocumentType{
		DocTranscript, DocNationalIDCard, DocProofOfResidence, DocLetterOfRecommendation,
		DocProofOfBankAccount, DocCoverLetter, DocPayslip,
	}

	documentLabels = map[DocumentType]string{
		DocTranscript:             "Academic Transcript",
		DocNationalIDCard:         "National ID Card",
		DocProofOfResidence:       "Proof of Residence",
		DocLetterOfRecommendation: "Letter of Recommendation",
		DocProofOfBankAccount:     "Proof of Bank Account",
		DocCoverLetter:            "Cover Letter",
		DocPayslip:                "Payslip",
	}
)

// Label is the human-readable document name.
func (d DocumentType) Label() string {
	if l, ok := documentLabels[d]; ok {
		return l
	}
	return string(d)
}

func (d DocumentType) Valid() bool {
	_, ok := documentLabels[d]
	return ok
}

func (d DocumentType) Mandatory() bool {
	for _, m := range MandatoryDocuments {
		if m == d {
			return true
		}
	}
	return false
}

// File is an uploaded binary held for the life of a session only.
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// DocumentSlot is either empty or uploaded with a file.
type DocumentSlot struct {
	Uploaded bool  `json:"uploaded"`
	File     *File `json:"file,omitempty"`
}

func (s DocumentSlot) Empty() bool {
	return !s.Uploaded || s.File == nil
}

// Documents maps each type to its slot. Missing keys read as empty slots.
type Documents map[DocumentType]DocumentSlot

func NewDocuments() Documents {
	docs := make(Documents, len(DocumentTypes))
	for _, d := range DocumentTypes {
		docs[d] = DocumentSlot{}
	}
	return docs
}
