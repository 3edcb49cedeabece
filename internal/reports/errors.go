package reports

import "errors"

var (
	ErrReportNotFound                        = errors.New("report not found")
	ErrAlreadyCrossChecked                   = errors.New("report was already cross checked")
	ErrCannotCrossCheckDcpReport             = errors.New("data collection point reports cannot be cross checked")
	ErrCannotCrossCheckReportWithoutLocation = errors.New("reports without a resolved location cannot be cross checked")
)
