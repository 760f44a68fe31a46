package services

// Notification texts shown to the user.
const (
	titleExpenseAdded   = "Expense added successfully"
	titleMissingInput   = "Please enter amount and select category"
	titlePaymentStarted = "Opening payment app..."
	titlePaymentDone    = "Payment successful"
	titlePaymentFailed  = "Payment failed"
	titleSettingsSaved  = "Settings saved successfully"
	titleSettingsFailed = "Settings not saved"

	titleExportOK     = "Export Successful"
	titleExportFailed = "Export Failed"
	descExportFailed  = "There was an error exporting your data"

	titleImportOK     = "Import Successful"
	titleImportFailed = "Import Failed"
	descImportRead    = "Error reading the file"
	descImportParse   = "Unable to process the uploaded file"
)
