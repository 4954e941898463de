package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/angelmondragon/pressing-admin/api/responses"
	"github.com/angelmondragon/pressing-admin/api/validators"
	"github.com/angelmondragon/pressing-admin/internal/operations"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
)

const (
	proofFormField        = "preuve"
	proofDescriptionField = "description"
)

func ListOperations(svc operations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GetOperation(svc operations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "operationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		op, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, op)
	}
}

func ChangeOperationStatus(svc operations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "operationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body operations.StatusInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		op, err := svc.ChangeStatus(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, op)
	}
}

func ListOperationProofs(svc operations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "operationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		proofs, err := svc.ListProofs(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, proofs)
	}
}

// UploadOperationProof relays a multipart file to the backend once the operation is done.
func UploadOperationProof(svc operations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "operationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, operations.MaxProofSize+(1<<20))
		if err := r.ParseMultipartForm(operations.MaxProofSize); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body").
				WithDetails(map[string]string{proofFormField: "Fichier trop volumineux ou formulaire invalide"}))
			return
		}
		file, header, err := r.FormFile(proofFormField)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
					WithDetails(map[string]string{proofFormField: "Un fichier est requis"}))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read proof file"))
			return
		}
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read proof file"))
			return
		}

		proof, err := svc.AddProof(r.Context(), id, operations.Proof{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     content,
			Description: r.FormValue(proofDescriptionField),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, proof)
	}
}
