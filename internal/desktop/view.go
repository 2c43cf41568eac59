package desktop

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/currency-converter/internal/currency"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/service"
)

const (
	WindowTitle = "Currency Converter"

	invalidInputText    = "Invalid input"
	checkingText        = "Checking..."
	runningText         = "Running..."
	successText         = "Success"
	networkErrorText    = "Network Error: Unable to fetch exchange rates"
	invalidResponseText = "Invalid Response: Unable to read exchange rates"
)

// View is the converter window. All methods must be called on the Fyne
// main goroutine; refresh outcomes are marshalled back with fyne.Do.
type View struct {
	app       fyne.App
	window    fyne.Window
	converter *service.ConverterService
	worker    *service.RefreshWorker
	logger    *logrus.Entry

	amountEntry   *widget.Entry
	fromSelect    *widget.Select
	toSelect      *widget.Select
	convertButton *widget.Button
	resultLabel   *widget.Label
	statusLabel   *widget.Label
	updateButton  *widget.Button
	darkModeCheck *widget.Check

	progress *dialog.CustomDialog

	// afterRefresh runs on the main goroutine once an outcome is displayed
	afterRefresh func(service.RefreshOutcome)
}

// NewView builds the window. Call Start to fire the startup refresh.
func NewView(app fyne.App, converter *service.ConverterService, worker *service.RefreshWorker, darkMode bool, log *logger.Logger) *View {
	view := &View{
		app:       app,
		window:    app.NewWindow(WindowTitle),
		converter: converter,
		worker:    worker,
		logger:    log.Component("desktop"),
	}

	view.setupWidgets(darkMode)
	view.window.SetContent(view.layout())
	view.window.Resize(fyne.NewSize(420, 320))

	return view
}

func (view *View) setupWidgets(darkMode bool) {
	currencies := view.converter.Currencies()

	view.amountEntry = widget.NewEntry()
	view.amountEntry.SetPlaceHolder("Amount")
	view.amountEntry.OnSubmitted = func(string) { view.convert() }

	view.fromSelect = widget.NewSelect(currencies, nil)
	view.fromSelect.SetSelected(currency.DefaultFrom)
	view.toSelect = widget.NewSelect(currencies, nil)
	view.toSelect.SetSelected(currency.DefaultTo)

	view.convertButton = widget.NewButton("Convert", view.convert)
	view.convertButton.Importance = widget.HighImportance

	view.resultLabel = widget.NewLabel("")
	view.statusLabel = widget.NewLabel(checkingText)

	view.updateButton = widget.NewButton("Update Rates", view.updateRates)

	view.darkModeCheck = widget.NewCheck("Dark Mode", view.setDarkMode)
	view.darkModeCheck.SetChecked(darkMode)
	view.setDarkMode(darkMode)
}

func (view *View) layout() fyne.CanvasObject {
	form := container.New(layout.NewFormLayout(),
		widget.NewLabel("Amount:"), view.amountEntry,
		widget.NewLabel("From Currency:"), view.fromSelect,
		widget.NewLabel("To Currency:"), view.toSelect,
	)

	status := container.NewHBox(widget.NewLabel("Internet:"), view.statusLabel)
	controls := container.NewHBox(view.updateButton, layout.NewSpacer(), view.darkModeCheck)

	return container.NewPadded(container.NewVBox(
		form,
		view.convertButton,
		view.resultLabel,
		widget.NewSeparator(),
		status,
		controls,
	))
}

// Window returns the converter window.
func (view *View) Window() fyne.Window {
	return view.window
}

// Start fires the startup refresh. Its outcome only updates the status label.
func (view *View) Start() {
	view.submitRefresh(false)
}

func (view *View) convert() {
	result, err := view.converter.ConvertInput(view.amountEntry.Text, view.fromSelect.Selected, view.toSelect.Selected)
	if err != nil {
		view.resultLabel.SetText(invalidInputText)
		return
	}

	view.resultLabel.SetText(service.ResultLine(result.Converted, result.To))
}

func (view *View) updateRates() {
	view.updateButton.Disable()

	content := container.NewVBox(widget.NewLabel(runningText), widget.NewProgressBarInfinite())
	view.progress = dialog.NewCustomWithoutButtons("Updating Rates", content, view.window)
	view.progress.Show()

	view.submitRefresh(true)
}

func (view *View) submitRefresh(interactive bool) {
	reply := view.worker.Submit()

	go func() {
		outcome := <-reply
		fyne.Do(func() {
			view.showOutcome(outcome, interactive)
		})
	}()
}

func (view *View) showOutcome(outcome service.RefreshOutcome, interactive bool) {
	view.logger.WithFields(logrus.Fields{
		"outcome":     outcome.Kind.String(),
		"interactive": interactive,
	}).Debug("Displaying refresh outcome")

	if outcome.InternetAccessible {
		view.statusLabel.SetText(string(service.ConnectivityAccessible))
	} else {
		view.statusLabel.SetText(string(service.ConnectivityNotAccessible))
	}

	if interactive {
		if view.progress != nil {
			view.progress.Hide()
			view.progress = nil
		}
		view.updateButton.Enable()

		title, message := refreshMessage(outcome.Kind)
		dialog.ShowInformation(title, message, view.window)
	}

	if view.afterRefresh != nil {
		view.afterRefresh(outcome)
	}
}

func refreshMessage(kind service.OutcomeKind) (title, message string) {
	switch kind {
	case service.OutcomeSuccess:
		return "Update Complete", successText
	case service.OutcomeParseError:
		return "Error", invalidResponseText
	default:
		return "Error", networkErrorText
	}
}

func (view *View) setDarkMode(dark bool) {
	view.app.Settings().SetTheme(newVariantTheme(dark))
}
